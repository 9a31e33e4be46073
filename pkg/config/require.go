package config

import "log"

// MustLoad is Load for process start-up: a missing required variable such as
// the signing secret stops the process instead of letting it serve unauthenticated.
func MustLoad(cfg any, envFiles ...string) {
	if err := Load(cfg, envFiles...); err != nil {
		log.Fatalf("config: %v", err)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
