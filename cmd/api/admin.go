package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"arkpower/internal/domain"
	"arkpower/internal/logging"
	"arkpower/internal/users"
	"arkpower/pkg/database"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage user roles",
	Long:  "Promote, suspend and list users directly against the configured store.",
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote [email]",
	Short: "Grant the admin role",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSetRole(args[0], domain.RoleAdmin)
	},
}

var adminSuspendCmd = &cobra.Command{
	Use:   "suspend [email]",
	Short: "Suspend a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSetRole(args[0], domain.RoleSuspend)
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Run:   runAdminList,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminPromoteCmd)
	adminCmd.AddCommand(adminSuspendCmd)
	adminCmd.AddCommand(adminListCmd)
}

func getUserService(ctx context.Context) (*users.Service, func()) {
	cfg := mustLoadConfig()
	logger := logging.New(os.Stderr, cfg.IsProduction())

	docs, err := database.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	return users.NewService(docs), func() { _ = docs.Close(context.Background()) }
}

func runSetRole(email string, role domain.Role) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, cleanup := getUserService(ctx)
	defer cleanup()

	res, err := svc.SetRoleByEmail(ctx, email, role)
	if err != nil {
		log.Fatalf("Failed to set role: %v", err)
	}
	if res.MatchedCount == 0 {
		log.Fatalf("User not found: %s", email)
	}
	fmt.Printf("User %s now has role %q\n", email, role)
}

func runAdminList(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, cleanup := getUserService(ctx)
	defer cleanup()

	list, err := svc.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("No users found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE")
	for _, doc := range list {
		u := domain.UserFromDocument(doc)
		role := string(u.Role)
		if role == "" {
			role = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Email, role)
	}
	w.Flush()
}
