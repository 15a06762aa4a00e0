package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	stored *Snapshot
}

func (f *fakeRemote) CreateBackup(_ context.Context, snapshot Snapshot) error {
	s := snapshot
	f.stored = &s
	return nil
}

func (f *fakeRemote) RecoverBackup(_ context.Context, schemaName string) (*Snapshot, error) {
	if f.stored == nil {
		return nil, walleterrors.NewRuntimeError(walleterrors.CodeObjectNotFound, "no object", nil)
	}
	return f.stored, nil
}

func testKey() []byte {
	return []byte("01234567890123456789012345678901")[:32]
}

func TestBackupAndRecoverRoundtrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "wallet.sqlite3")
	require.NoError(t, os.WriteFile(dbPath, []byte("pretend sqlite contents"), 0o600))

	remote := &fakeRemote{}
	mgr := NewManager(remote, dbPath, testKey())

	require.NoError(t, mgr.Backup(ctx))
	require.NotNil(t, remote.stored)
	assert.Equal(t, schemaName, remote.stored.SchemaName)
	assert.NotEqual(t, []byte("pretend sqlite contents"), remote.stored.EncryptedDB)

	require.NoError(t, os.Remove(dbPath))
	require.NoError(t, mgr.Recover(ctx))

	recovered, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "pretend sqlite contents", string(recovered))
}

func TestRecoverWithNoBackupReturnsBackupNotFound(t *testing.T) {
	mgr := NewManager(&fakeRemote{}, filepath.Join(t.TempDir(), "wallet.sqlite3"), testKey())
	err := mgr.Recover(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackupNotFound) || sameCode(err, walleterrors.CodeBackupNotFound))
}

func sameCode(err error, code walleterrors.RuntimeErrorCode) bool {
	c, ok := walleterrors.RuntimeErrorCodeOf(err)
	return ok && c == code
}
