package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jhalttu/textpipe/internal/service"
	"github.com/jhalttu/textpipe/internal/store"

	_ "modernc.org/sqlite"
)

var userCreateFlags struct {
	username string
	role     string
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user in the local database",
	RunE:  runUserCreate,
}

func init() {
	f := userCreateCmd.Flags()
	f.StringVar(&userCreateFlags.username, "username", "", "username")
	f.StringVar(&userCreateFlags.role, "role", "operator", "role: operator, admin or superuser")

	_ = userCreateCmd.MarkFlagRequired("username")

	userCmd.AddCommand(userCreateCmd)
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	role, err := store.ParseRole(userCreateFlags.role)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	rdb := store.InitDatabase(true)
	defer rdb.Close()
	rwdb := store.InitDatabase(false)
	defer rwdb.Close()
	store.RunMigrations(rwdb, "sqlite3")

	userSvc := service.NewUserService(store.NewUserSQLiteStore(rdb, rwdb))
	u, err := userSvc.CreateUser(
		cmd.Context(), role, userCreateFlags.username, string(passwordBytes),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s\n", u.UserRoleID.ToString(), u.Username)
	return nil
}
