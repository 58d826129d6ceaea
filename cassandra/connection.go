package cassandra

import (
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"
)

// Config contains configuration for connecting to a Cassandra cluster and the userbase keyspace.
type Config struct {
	// ClusterHosts lists contact points for the Cassandra cluster.
	ClusterHosts []string
	// Keyspace is the keyspace used for userbase tables.
	Keyspace string
	// Consistency is the default consistency level for queries.
	Consistency gocql.Consistency
	// ConnectionTimeout is the session connection timeout.
	ConnectionTimeout time.Duration
	// Authenticator is used when the cluster requires authentication.
	Authenticator gocql.Authenticator
	// ReplicationClause defines the keyspace replication (e.g., SimpleStrategy).
	ReplicationClause string
	// TransactionTable is the per-user transaction log table. Defaults to "t_by_user".
	TransactionTable string
	// UserTable is the user records table. Defaults to "users"; the user-id
	// mapping table derives as "<UserTable>_by_id".
	UserTable string

	// ConsistencyBook allows overriding per-API consistency levels.
	ConsistencyBook ConsistencyBook
}

// ensureDefaults fills zero config fields with their default values.
func (c *Config) ensureDefaults() {
	if c.Keyspace == "" {
		// default keyspace
		c.Keyspace = "userbase"
	}
	if c.Consistency == gocql.Any {
		// Defaults to LocalQuorum consistency. You should set it to an appropriate level.
		c.Consistency = gocql.LocalQuorum
	}
	if c.ReplicationClause == "" {
		// Specify an appropriate replication feature.
		c.ReplicationClause = "{'class':'SimpleStrategy', 'replication_factor':1}"
	}
	if c.TransactionTable == "" {
		c.TransactionTable = "t_by_user"
	}
	if c.UserTable == "" {
		c.UserTable = "users"
	}
}

// userByIDTable is the user-id to username mapping table name.
func (c Config) userByIDTable() string {
	return c.UserTable + "_by_id"
}

// ConsistencyBook enumerates per-API consistency levels used by this package.
// Transaction writes ride on lightweight transactions so their serial
// consistency is managed by gocql; these only tune the regular part.
type ConsistencyBook struct {
	TransactionAdd gocql.Consistency
	TransactionGet gocql.Consistency
	UserGet        gocql.Consistency
	UserUpdate     gocql.Consistency
}

// Connection wraps a Cassandra session and its configuration.
type Connection struct {
	Session *gocql.Session
	Config
}

var connection *Connection
var mux sync.Mutex

// IsConnectionInstantiated reports whether a global Connection has been created.
func IsConnectionInstantiated() bool {
	return connection != nil
}

// OpenConnection returns the existing global Connection or opens a new one using the provided config.
func OpenConnection(config Config) (*Connection, error) {
	if connection != nil {
		return connection, nil
	}
	mux.Lock()
	defer mux.Unlock()

	if connection != nil {
		return connection, nil
	}
	config.ensureDefaults()
	cluster := gocql.NewCluster(config.ClusterHosts...)
	cluster.Consistency = config.Consistency
	if config.ConnectionTimeout > 0 {
		cluster.ConnectTimeout = config.ConnectionTimeout
	}
	if config.Authenticator != nil {
		cluster.Authenticator = config.Authenticator
		// Clear the authenticator just to be safer, we don't need to keep it hanging around.
		config.Authenticator = nil
	}
	var c = Connection{
		Config: config,
	}
	s, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	if err := s.Query(fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = %s;", config.Keyspace, config.ReplicationClause)).Exec(); err != nil {
		return nil, err
	}
	// Auto create the per-user transaction log table if not yet. Partition key is the
	// user ID, clustering key the sequence number, matching the log's read patterns.
	if err := s.Query(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (user_id text, seq_no bigint, item_id text, cmd int, record blob, PRIMARY KEY (user_id, seq_no));", config.Keyspace, config.TransactionTable)).Exec(); err != nil {
		return nil, err
	}
	// User records keyed by username, plus the user-id to username mapping used
	// by the bundle path which only carries a user ID.
	if err := s.Query(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (username text PRIMARY KEY, user_id text, bundle_seq_no bigint, public_key blob);", config.Keyspace, config.UserTable)).Exec(); err != nil {
		return nil, err
	}
	if err := s.Query(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (user_id text PRIMARY KEY, username text);", config.Keyspace, config.userByIDTable())).Exec(); err != nil {
		return nil, err
	}

	c.Session = s
	connection = &c
	return connection, nil
}

// CloseConnection closes and clears the global connection, if it exists.
func CloseConnection() {
	if connection == nil {
		return
	}
	mux.Lock()
	defer mux.Unlock()
	if connection == nil {
		return
	}
	if connection.Session != nil {
		connection.Session.Close()
	}
	connection = nil
}
