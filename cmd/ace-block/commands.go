package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtRiskMedia/ace-block/internal/application/services"
	"github.com/AtRiskMedia/ace-block/internal/application/startup"
	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/security"
	"github.com/AtRiskMedia/ace-block/pkg/config"
	"github.com/spf13/cobra"
)

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ace-block",
		Short: "ACE engagement analytics block service",
		Long: `Serves the ACE engagement block: resolves what each block instance
shows to a viewer, proxies graph fragments from the analytics service and
stores the live/static toggle preference.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startup.Initialize()
		},
	}

	root.AddCommand(
		buildServeCmd(),
		buildMigrateCmd(),
		buildRenderCmd(),
		buildGrantCmd(),
		buildTokenCmd(),
		buildKeygenCmd(),
	)
	return root
}

func buildServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startup.Initialize()
		},
	}
}

func buildMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and the system context",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := startup.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Close()

			db, err := startup.OpenDatabase(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := startup.Migrate(db, logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready on %s (%s)\n", config.DBDSN, db.ConnectionInfo())
			return nil
		},
	}
}

func buildRenderCmd() *cobra.Command {
	var (
		instanceID         string
		userID             int64
		pageContextID      int64
		requestedContextID int64
		courseID           int64
		summary            bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a block instance for a user and print the HTML",
		Example: `  # Render block 01J... as user 5 on the page of context 70
  ace-block render --block 01J... --user 5 --context 70

  # Render as seen from another user's profile
  ace-block render --block 01J... --user 6 --context 30 --requested-context 30 --course 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appContainer, err := startup.Bootstrap()
			if err != nil {
				return err
			}
			defer appContainer.Close()

			ctx := context.Background()
			viewer, err := appContainer.BlockService.NewViewerContext(ctx, services.ViewerRequest{
				CurrentUserID:      userID,
				PageContextID:      pageContextID,
				RequestedContextID: requestedContextID,
				RequestedCourseID:  courseID,
			})
			if err != nil {
				return err
			}

			output, err := appContainer.BlockService.RenderInstance(ctx, instanceID, viewer)
			if err != nil {
				return err
			}
			if output.IsEmpty() {
				fmt.Fprintln(cmd.ErrOrStderr(), "(empty: nothing may be shown to this user)")
				return nil
			}
			if summary {
				fmt.Fprintf(cmd.OutOrStdout(), "mode=%s title=%q help=%t toggle=%t\n", output.Mode, output.Title, output.Help != "", output.Toggle != nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), output.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&instanceID, "block", "", "Block instance id")
	cmd.Flags().Int64Var(&userID, "user", 0, "Viewing user id")
	cmd.Flags().Int64Var(&pageContextID, "context", 0, "Page context id")
	cmd.Flags().Int64Var(&requestedContextID, "requested-context", 0, "Requested context id (the contextid page parameter)")
	cmd.Flags().Int64Var(&courseID, "course", 0, "Requested course id (the course page parameter)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a one-line summary before the HTML")
	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("context")

	return cmd
}

func buildGrantCmd() *cobra.Command {
	var (
		userID    int64
		contextID int64
		prohibit  bool
	)

	cmd := &cobra.Command{
		Use:   "grant <capability>",
		Short: "Grant or prohibit a capability for a user in a context",
		Example: `  ace-block grant local/ace:view --user 6 --context 50
  ace-block grant local/ace:viewown --user 5 --context 50 --prohibit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appContainer, err := startup.Bootstrap()
			if err != nil {
				return err
			}
			defer appContainer.Close()

			permission := access.PermissionAllow
			if prohibit {
				permission = access.PermissionProhibit
			}

			ctx := context.Background()
			c, err := appContainer.Contexts.FindByID(ctx, contextID)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("context %d: %w", contextID, access.ErrContextNotFound)
			}
			if err := appContainer.Capabilities.Grant(ctx, userID, args[0], contextID, permission); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %d for user %d in %s context %d\n", args[0], permission, userID, c.Level, c.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().Int64Var(&contextID, "context", 0, "Context id")
	cmd.Flags().BoolVar(&prohibit, "prohibit", false, "Store a prohibit instead of an allow")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("context")

	return cmd
}

func buildTokenCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a viewer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user must be a positive user id")
			}
			token, err := security.GenerateViewerToken(userID, config.JWTSecret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User id carried in the token subject")
	return cmd
}

func buildKeygenCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random secret suitable for JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := security.GenerateSecureKey(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().IntVar(&length, "length", 64, "Key length in hex characters")
	return cmd
}
