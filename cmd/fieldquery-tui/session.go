package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// newSessionID builds the opaque token that correlates every query in one
// controller lifetime with the backend's per-session context. Generated once
// in newModel and never regenerated.
func newSessionID() string {
	return fmt.Sprintf("session-%d-%s", time.Now().Unix(), uuid.NewString())
}
