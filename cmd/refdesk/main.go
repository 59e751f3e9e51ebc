package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/refdesk/refdesk/internal/api"
	"github.com/refdesk/refdesk/internal/config"
	"github.com/refdesk/refdesk/internal/domain"
	"github.com/refdesk/refdesk/internal/session"
	"github.com/refdesk/refdesk/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var taskFlag string

var rootCmd = &cobra.Command{
	Use:   "refdesk",
	Short: "Terminal dashboard for referral/payment tracking",
	Long: `refdesk is a terminal client for the referral/payment tracking backend.

Employees work a task's participant roster and pay out completed users,
admins manage email-collection tasks and review balance ledgers, users
inspect their own profile and entries.

Log in once per role, then open that role's dashboard:

  refdesk login employee e123
  refdesk employee --task t456`,
}

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Open the employee roster dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(session.RoleEmployee, taskFlag)
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Open the admin task and balance dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(session.RoleAdmin, "")
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Open the user profile dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(session.RoleUser, "")
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [role] [id]",
	Short: "Store the identifier for a role (admin, employee or user)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRole(args[0])
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := session.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetIdentity(role, args[1]); err != nil {
			return fmt.Errorf("store identity: %w", err)
		}
		fmt.Printf("Logged in as %s %s\n", role, args[1])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout [role]",
	Short: "Clear the stored identifier for a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRole(args[0])
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := session.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ClearIdentity(role); err != nil {
			return fmt.Errorf("clear identity: %w", err)
		}
		fmt.Printf("Logged out %s\n", role)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("refdesk %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func parseRole(s string) (session.Role, error) {
	switch session.Role(s) {
	case session.RoleAdmin, session.RoleEmployee, session.RoleUser:
		return session.Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q (want admin, employee or user)", s)
}

// newLogger writes to a file under the data dir; stdout belongs to the TUI.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logPath := filepath.Join(cfg.DataDir, "refdesk.log")
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}
	return zcfg.Build()
}

func runDashboard(role session.Role, taskID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := session.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	identity, err := store.Identity(role)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if identity == "" {
		return fmt.Errorf("%w as %s; run: refdesk login %s <id>", domain.ErrNotLoggedIn, role, role)
	}

	// Employees can fall back to the last opened task.
	if role == session.RoleEmployee {
		if taskID == "" {
			taskID, _ = store.GetSetting("last_task_id")
		} else {
			store.SetSetting("last_task_id", taskID)
		}
	}

	client := api.New(cfg.APIBaseURL, time.Duration(cfg.RequestTimeout)*time.Second, logger)
	logger.Info("starting dashboard",
		zap.String("role", string(role)),
		zap.String("api", cfg.APIBaseURL))

	app := ui.NewApp(ui.Deps{
		Client:   client,
		Store:    store,
		Log:      logger,
		Role:     role,
		Identity: identity,
		TaskID:   taskID,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}

func main() {
	employeeCmd.Flags().StringVar(&taskFlag, "task", "", "task id to open")

	rootCmd.AddCommand(employeeCmd, adminCmd, userCmd, loginCmd, logoutCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
