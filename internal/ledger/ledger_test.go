package ledger_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/studentpub/internal/filesystem"
	"github.com/temirov/studentpub/internal/ledger"
)

const (
	ledgerFileNameConstant    = "pushed_folder.txt"
	firstProjectPathConstant  = "/projects/1. Blink"
	secondProjectPathConstant = "/projects/2. Servo Sweep"
	unrecordedProjectConstant = "/projects/3. Thermometer"
	ledgerPermissionsConstant = 0o644
)

type failingAppendFileSystem struct {
	filesystem.OSFileSystem
}

func (failingAppendFileSystem) AppendFile(string, []byte, fs.FileMode) error {
	return errors.New("disk full")
}

func TestLoadMissingFileYieldsEmptyLedger(testInstance *testing.T) {
	ledgerPath := filepath.Join(testInstance.TempDir(), ledgerFileNameConstant)

	loadedLedger, loadError := ledger.Load(filesystem.OSFileSystem{}, ledgerPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 0, loadedLedger.Size())
	require.False(testInstance, loadedLedger.Contains(firstProjectPathConstant))
}

func TestLoadParsesEntries(testInstance *testing.T) {
	ledgerPath := filepath.Join(testInstance.TempDir(), ledgerFileNameConstant)
	contents := firstProjectPathConstant + "\n\n  " + secondProjectPathConstant + "  \r\n" + firstProjectPathConstant + "\n"
	require.NoError(testInstance, os.WriteFile(ledgerPath, []byte(contents), ledgerPermissionsConstant))

	loadedLedger, loadError := ledger.Load(filesystem.OSFileSystem{}, ledgerPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 2, loadedLedger.Size())
	require.True(testInstance, loadedLedger.Contains(firstProjectPathConstant))
	require.True(testInstance, loadedLedger.Contains(secondProjectPathConstant))
	require.False(testInstance, loadedLedger.Contains(unrecordedProjectConstant))
	require.Equal(testInstance, []string{firstProjectPathConstant, secondProjectPathConstant}, loadedLedger.Entries())
}

func TestAppendPersistsAcrossLoads(testInstance *testing.T) {
	ledgerPath := filepath.Join(testInstance.TempDir(), ledgerFileNameConstant)

	firstLedger, loadError := ledger.Load(filesystem.OSFileSystem{}, ledgerPath)
	require.NoError(testInstance, loadError)
	require.NoError(testInstance, firstLedger.Append(firstProjectPathConstant))
	require.NoError(testInstance, firstLedger.Append(firstProjectPathConstant))
	require.NoError(testInstance, firstLedger.Append(secondProjectPathConstant))
	require.Equal(testInstance, 2, firstLedger.Size())

	contents, readError := os.ReadFile(ledgerPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, firstProjectPathConstant+"\n"+secondProjectPathConstant+"\n", string(contents))

	secondLedger, reloadError := ledger.Load(filesystem.OSFileSystem{}, ledgerPath)
	require.NoError(testInstance, reloadError)
	require.True(testInstance, secondLedger.Contains(firstProjectPathConstant))
	require.True(testInstance, secondLedger.Contains(secondProjectPathConstant))
}

func TestAppendRejectsBlankEntry(testInstance *testing.T) {
	loadedLedger, loadError := ledger.Load(filesystem.OSFileSystem{}, filepath.Join(testInstance.TempDir(), ledgerFileNameConstant))
	require.NoError(testInstance, loadError)
	require.ErrorIs(testInstance, loadedLedger.Append("   "), ledger.ErrEmptyEntry)
}

func TestAppendFailureLeavesLedgerUnchanged(testInstance *testing.T) {
	loadedLedger, loadError := ledger.Load(failingAppendFileSystem{}, filepath.Join(testInstance.TempDir(), ledgerFileNameConstant))
	require.NoError(testInstance, loadError)

	appendError := loadedLedger.Append(firstProjectPathConstant)
	require.Error(testInstance, appendError)
	require.False(testInstance, loadedLedger.Contains(firstProjectPathConstant))
	require.Equal(testInstance, 0, loadedLedger.Size())
}

func TestLoadValidatesInputs(testInstance *testing.T) {
	_, missingFileSystemError := ledger.Load(nil, ledgerFileNameConstant)
	require.ErrorIs(testInstance, missingFileSystemError, ledger.ErrFileSystemMissing)

	_, missingPathError := ledger.Load(filesystem.OSFileSystem{}, " ")
	require.ErrorIs(testInstance, missingPathError, ledger.ErrFilePathMissing)
}
