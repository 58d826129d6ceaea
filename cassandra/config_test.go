package cassandra

import (
	"testing"

	"github.com/gocql/gocql"
)

func Test_Config_EnsureDefaults(t *testing.T) {
	var c Config
	c.ensureDefaults()

	if c.Keyspace != "userbase" {
		t.Fatalf("keyspace default mismatch: %q", c.Keyspace)
	}
	if c.Consistency != gocql.LocalQuorum {
		t.Fatalf("consistency default mismatch: %v", c.Consistency)
	}
	if c.TransactionTable != "t_by_user" || c.UserTable != "users" {
		t.Fatalf("table defaults mismatch: %q, %q", c.TransactionTable, c.UserTable)
	}
	if c.userByIDTable() != "users_by_id" {
		t.Fatalf("user-id table mismatch: %q", c.userByIDTable())
	}
}

func Test_Config_EnsureDefaults_PreservesOverrides(t *testing.T) {
	c := Config{
		Keyspace:         "mykeyspace",
		Consistency:      gocql.One,
		TransactionTable: "tlog",
		UserTable:        "accounts",
	}
	c.ensureDefaults()

	if c.Keyspace != "mykeyspace" || c.Consistency != gocql.One {
		t.Fatalf("overrides clobbered: %q, %v", c.Keyspace, c.Consistency)
	}
	if c.TransactionTable != "tlog" || c.UserTable != "accounts" {
		t.Fatalf("table overrides clobbered: %q, %q", c.TransactionTable, c.UserTable)
	}
	if c.userByIDTable() != "accounts_by_id" {
		t.Fatalf("user-id table mismatch: %q", c.userByIDTable())
	}
}
