package userbase

import (
	"encoding/json"
	"fmt"
)

// Command enumerates the write commands a client can issue against its log.
type Command int

const (
	CommandUnknown Command = iota
	CommandInsert
	CommandUpdate
	CommandDelete
	// CommandRollback is never submitted by clients. It is the terminal rewrite
	// the engine applies to a slot whose durable insert failed.
	CommandRollback
)

var commandNames = map[Command]string{
	CommandInsert:   "Insert",
	CommandUpdate:   "Update",
	CommandDelete:   "Delete",
	CommandRollback: "Rollback",
}

// ParseCommand maps a wire action tag to its Command. Unknown tags yield BadInput.
func ParseCommand(s string) (Command, error) {
	for c, n := range commandNames {
		if n == s {
			return c, nil
		}
	}
	return CommandUnknown, Errorf(BadInput, "unknown command %q", s)
}

func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// IsValid reports whether the command is one a client may submit.
func (c Command) IsValid() bool {
	switch c {
	case CommandInsert, CommandUpdate, CommandDelete:
		return true
	}
	return false
}

func (c Command) MarshalJSON() ([]byte, error) {
	n, ok := commandNames[c]
	if !ok {
		return nil, Errorf(Internal, "command %d has no name", int(c))
	}
	return json.Marshal(n)
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseCommand(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Transaction is the unit of the per-user append-only log. Record holds the
// opaque encrypted payload and is nil for Delete and Rollback commands.
// Once persisted, (UserID, SequenceNo) is immutable; the only permitted
// post-persist rewrite is from any non-Rollback command to Rollback.
type Transaction struct {
	UserID     string  `json:"user_id"`
	SequenceNo int64   `json:"seq_no"`
	ItemID     string  `json:"item_id"`
	Command    Command `json:"cmd"`
	Record     []byte  `json:"record,omitempty"`
}

// User is the user record owned by the external user collaborator. The core
// reads it and updates only BundleSequenceNo.
type User struct {
	Username         string `json:"username"`
	UserID           string `json:"user_id"`
	BundleSequenceNo int64  `json:"bundle_seq_no"`
	PublicKey        []byte `json:"public_key,omitempty"`
}

// BundleKey formats the blob store key of the bundle at the given sequence number.
func BundleKey(userID string, bundleSequenceNo int64) string {
	return fmt.Sprintf("%s/%d", userID, bundleSequenceNo)
}

// LockKey is the unit of the cooperative locking API offered by Cache.
type LockKey struct {
	// Key is the (namespaced) cache key the lock lives under.
	Key string
	// LockID is the unguessable token proving ownership.
	LockID UUID
	// IsLockOwner is set by Lock/IsLocked when this process owns the key.
	IsLockOwner bool
}
