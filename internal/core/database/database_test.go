package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "u:p@tcp(127.0.0.1:3306)/db?parseTime=true",
			want: "u:p@tcp(127.0.0.1:3306)/db?parseTime=true",
		},
		{
			name: "url form",
			in:   "mysql://u:p@127.0.0.1:3306/db",
			want: "u:p@tcp(127.0.0.1:3306)/db?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params",
			in:   "jdbc:mysql://127.0.0.1:3306/db?characterEncoding=utf8&useSSL=false&serverTimezone=UTC&user=a&password=b",
			want: "a:b@tcp(127.0.0.1:3306)/db?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "credential override",
			in:   "mysql://u:p@h:3306/db?parseTime=false",
			user: "root", pass: "secret",
			want: "root:secret@tcp(h:3306)/db?charset=utf8mb4&parseTime=false",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "u:****@tcp(h)/db", maskDSN("u:secret@tcp(h)/db"))
	assert.Equal(t, "host=db", maskDSN("host=db"))
}

func TestIsDupKey(t *testing.T) {
	assert.False(t, IsDupKey(nil))
	assert.False(t, IsDupKey(errors.New("boom")))
	assert.True(t, IsDupKey(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDupKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_email"`)))
	assert.True(t, IsDupKey(errors.New("Error 1062 (23000): Duplicate entry")))
	assert.True(t, IsDupKey(errors.New("UNIQUE constraint failed: physicians.email")))
}

func TestNewGorm(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())
}
