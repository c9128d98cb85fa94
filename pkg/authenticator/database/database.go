// Package database validates credentials against a users table.
//
//	authenticators:
//	  accounts:
//	    authenticator: database
//	    options:
//	      connection: postgres://casino@db/accounts?sslmode=disable
//	      table: users
//	      username_column: username
//	      password_column: encrypted_password
//	      extra_attributes:
//	        email: email_address
//
// Passwords are stored as bcrypt hashes. A missing user or a wrong password
// declines; a database failure is reported as an authenticator error.
package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/db"
)

var (
	tableRgx  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	columnRgx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Options configures the database authenticator
type Options struct {
	Connection      string            `mapstructure:"connection" validate:"required"`
	Table           string            `mapstructure:"table" validate:"required"`
	UsernameColumn  string            `mapstructure:"username_column"`
	PasswordColumn  string            `mapstructure:"password_column"`
	ExtraAttributes map[string]string `mapstructure:"extra_attributes"`
	Debug           bool              `mapstructure:"debug"`
}

// Authenticator implements password validation against a SQL table
type Authenticator struct {
	db    *gorm.DB
	owned bool
	query string

	usernameColumn string
	passwordColumn string
	attributes     []attribute
}

type attribute struct {
	name   string
	column string
}

// New opens the configured database and prepares the lookup query
func New(opts authenticator.Options) (authenticator.Authenticator, error) {
	var o Options
	if err := authenticator.DecodeOptions(opts, &o); err != nil {
		return nil, err
	}

	database, err := db.Connect(db.Config{URL: o.Connection, Debug: o.Debug, Lazy: true})
	if err != nil {
		return nil, err
	}
	a, err := NewWithDB(database, o)
	if err != nil {
		closeDB(database)
		return nil, err
	}
	a.owned = true
	return a, nil
}

// NewWithDB builds the authenticator over an existing connection
func NewWithDB(database *gorm.DB, o Options) (*Authenticator, error) {
	if o.UsernameColumn == "" {
		o.UsernameColumn = "username"
	}
	if o.PasswordColumn == "" {
		o.PasswordColumn = "encrypted_password"
	}

	if !tableRgx.MatchString(o.Table) {
		return nil, fmt.Errorf("invalid table name %q", o.Table)
	}
	columns := []string{o.UsernameColumn, o.PasswordColumn}
	names := make([]string, 0, len(o.ExtraAttributes))
	for name, column := range o.ExtraAttributes {
		names = append(names, name)
		columns = append(columns, column)
	}
	for _, column := range columns {
		if !columnRgx.MatchString(column) {
			return nil, fmt.Errorf("invalid column name %q", column)
		}
	}
	sort.Strings(names)

	a := &Authenticator{
		db:             database,
		usernameColumn: o.UsernameColumn,
		passwordColumn: o.PasswordColumn,
	}
	selected := []string{database.Statement.Quote(o.UsernameColumn), database.Statement.Quote(o.PasswordColumn)}
	for _, name := range names {
		column := o.ExtraAttributes[name]
		a.attributes = append(a.attributes, attribute{name: name, column: column})
		selected = append(selected, database.Statement.Quote(column))
	}

	a.query = fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = ?",
		strings.Join(selected, ", "),
		database.Statement.Quote(o.Table),
		database.Statement.Quote(o.UsernameColumn),
	)
	return a, nil
}

// Validate looks the user up and compares the bcrypt hash
func (a *Authenticator) Validate(ctx context.Context, creds authenticator.Credentials) (authenticator.UserData, error) {
	if creds.Username == "" {
		return nil, nil
	}

	row := map[string]any{}
	tx := a.db.WithContext(ctx).Raw(a.query, creds.Username).Scan(&row)
	if tx.Error != nil {
		return nil, authenticator.WrapError(tx.Error, "user lookup failed")
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}

	hash := stringValue(row[a.passwordColumn])
	if hash == "" {
		return nil, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, nil
	}
	if err != nil {
		return nil, authenticator.WrapError(err, "stored password hash is unusable")
	}

	data := authenticator.UserData{"username": stringValue(row[a.usernameColumn])}
	for _, attr := range a.attributes {
		data[attr.name] = normalize(row[attr.column])
	}
	return data, nil
}

// Status checks that the database is reachable
func (a *Authenticator) Status(ctx context.Context) error {
	return a.db.WithContext(ctx).Exec("SELECT 1").Error
}

// Close releases the connection pool opened by New. A connection handed to
// NewWithDB belongs to the caller and is left open.
func (a *Authenticator) Close() error {
	if !a.owned {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
