package cache

import "strings"

// KeyPrefix namespaces every Redis key written by the bot.
const KeyPrefix = "quizpoll"

// Key builds "quizpoll:<namespace>:<kind>:<id>". Empty parts are dropped.
func Key(namespace, kind, id string) string {
	parts := []string{KeyPrefix}
	for _, p := range []string{namespace, kind, id} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}

// LockKey returns the key backing the named distributed lock.
func LockKey(name string) string {
	return Key("lock", "", name)
}
