package cassandra

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/nuibits/userbase"
)

type userRepository struct{}

// NewUserRepository returns a Cassandra-backed implementation of userbase.UserRepository.
func NewUserRepository() userbase.UserRepository {
	return &userRepository{}
}

// GetByID resolves the username from the users_by_id mapping, then reads the
// user record. Returns NotFound when either half is missing.
func (ur *userRepository) GetByID(ctx context.Context, userID string) (userbase.User, error) {
	if connection == nil {
		return userbase.User{}, userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("cassandra connection is closed; call OpenConnection(config) to open it"))
	}

	selectStatement := fmt.Sprintf("SELECT username FROM %s.%s WHERE user_id = ?;",
		connection.Config.Keyspace, connection.Config.userByIDTable())
	qry := connection.Session.Query(selectStatement, userID).WithContext(ctx)
	if connection.Config.ConsistencyBook.UserGet > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.UserGet)
	}
	var username string
	if err := qry.Scan(&username); err != nil {
		if err == gocql.ErrNotFound {
			return userbase.User{}, userbase.Errorf(userbase.NotFound, "user %s not found", userID)
		}
		return userbase.User{}, userbase.NewError(userbase.TransientFailure, err)
	}

	selectStatement = fmt.Sprintf("SELECT username, user_id, bundle_seq_no, public_key FROM %s.%s WHERE username = ?;",
		connection.Config.Keyspace, connection.Config.UserTable)
	qry = connection.Session.Query(selectStatement, username).WithContext(ctx)
	if connection.Config.ConsistencyBook.UserGet > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.UserGet)
	}
	var u userbase.User
	if err := qry.Scan(&u.Username, &u.UserID, &u.BundleSequenceNo, &u.PublicKey); err != nil {
		if err == gocql.ErrNotFound {
			return userbase.User{}, userbase.Errorf(userbase.NotFound, "user %s not found", userID)
		}
		return userbase.User{}, userbase.NewError(userbase.TransientFailure, err)
	}
	return u, nil
}

// UpdateBundleSequence unconditionally sets the user's bundle sequence number.
// Monotonicity is the bundle coordinator's concern, not the store's.
func (ur *userRepository) UpdateBundleSequence(ctx context.Context, username string, bundleSequenceNo int64) error {
	if connection == nil {
		return userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("cassandra connection is closed; call OpenConnection(config) to open it"))
	}

	updateStatement := fmt.Sprintf("UPDATE %s.%s SET bundle_seq_no = ? WHERE username = ?;",
		connection.Config.Keyspace, connection.Config.UserTable)
	qry := connection.Session.Query(updateStatement, bundleSequenceNo, username).WithContext(ctx)
	if connection.Config.ConsistencyBook.UserUpdate > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.UserUpdate)
	}
	if err := qry.Exec(); err != nil {
		return userbase.NewError(userbase.TransientFailure, err)
	}
	return nil
}

// AddUser inserts the user record and its user-id mapping. User CRUD is owned
// by the outer service; this exists for provisioning tools and tests.
func (ur *userRepository) AddUser(ctx context.Context, u userbase.User) error {
	if connection == nil {
		return userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("cassandra connection is closed; call OpenConnection(config) to open it"))
	}

	insertStatement := fmt.Sprintf("INSERT INTO %s.%s (username, user_id, bundle_seq_no, public_key) VALUES(?,?,?,?);",
		connection.Config.Keyspace, connection.Config.UserTable)
	if err := connection.Session.Query(insertStatement, u.Username, u.UserID, u.BundleSequenceNo, u.PublicKey).WithContext(ctx).Exec(); err != nil {
		return userbase.NewError(userbase.TransientFailure, err)
	}
	insertStatement = fmt.Sprintf("INSERT INTO %s.%s (user_id, username) VALUES(?,?);",
		connection.Config.Keyspace, connection.Config.userByIDTable())
	if err := connection.Session.Query(insertStatement, u.UserID, u.Username).WithContext(ctx).Exec(); err != nil {
		return userbase.NewError(userbase.TransientFailure, err)
	}
	return nil
}
