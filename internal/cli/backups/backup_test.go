package backups

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/soberlit/internal/backup"
	"github.com/julianstephens/soberlit/internal/cli"
	"github.com/julianstephens/soberlit/internal/models"
	"github.com/julianstephens/soberlit/internal/storage"
	"github.com/julianstephens/soberlit/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, string) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &cli.Context{Store: store, ConfigDir: tempDir}, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}

	backups, err := backup.NewManager(dbPath).ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestBackupRestoreCmd(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	if err := ctx.Store.SaveDayStatus("2025-03-10", models.DayStatus{Sober: true}); err != nil {
		t.Fatalf("SaveDayStatus failed: %v", err)
	}
	mgr := backup.NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if err := ctx.Store.SaveDayStatus("2025-03-10", models.DayStatus{Sober: false}); err != nil {
		t.Fatalf("SaveDayStatus failed: %v", err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backupPath), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	restored := sqlite.NewStore(dbPath)
	if err := restored.Load(); err != nil {
		t.Fatalf("failed to load restored store: %v", err)
	}
	defer restored.Close()

	days, err := restored.LoadAllDayStatus()
	if err != nil {
		t.Fatalf("LoadAllDayStatus failed: %v", err)
	}
	if !days["2025-03-10"].Sober {
		t.Errorf("expected restored day to be sober, got %+v", days["2025-03-10"])
	}

	// The pre-restore database is kept as a second backup.
	backups, _ := mgr.ListBackups()
	if len(backups) != 2 {
		t.Errorf("expected 2 backups after restore, got %d", len(backups))
	}
}

func TestBackupRestoreCmd_Cancelled(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	backupPath, err := backup.NewManager(dbPath).CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	old := confirmInput
	confirmInput = strings.NewReader("n\n")
	defer func() { confirmInput = old }()

	if err := (&BackupRestoreCmd{BackupFile: backupPath}).Run(ctx); err != nil {
		t.Fatalf("cancelled restore returned error: %v", err)
	}

	// The store must still be open.
	if _, err := ctx.Store.LoadAllDayStatus(); err != nil {
		t.Errorf("store closed by a cancelled restore: %v", err)
	}
}

func TestBackupRestoreCmd_NotFound(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&BackupRestoreCmd{BackupFile: "missing.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected error for missing backup file")
	}
}

func TestBackupRequiresSQLite(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "soberlit.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init JSON store: %v", err)
	}
	ctx := &cli.Context{Store: store}

	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected backup create to fail for JSON storage")
	}
}
