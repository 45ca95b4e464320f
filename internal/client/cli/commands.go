package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"duvidha/internal/app/complaint"
	"duvidha/internal/app/user"
	"duvidha/internal/client/api"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "duvidha",
		Short:         "Command line client for the Duvidha complaint desk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSignupCmd(app),
		newSigninCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newComplaintsCmd(app),
	)
	return root
}

func newSignupCmd(app *App) *cobra.Command {
	var in user.SignupInput

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account with an institutional email",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := app.Session.Signup(cmd.Context(), in)
			if err != nil {
				return errors.New(app.Session.State().Error)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s (%s). Run \"duvidha signin\" to sign in.\n", created.Email, created.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "institutional email (@"+user.InstitutionalDomain+")")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.Role, "role", string(user.RoleStudent), "student or maintainer")
	cmd.Flags().StringVar(&in.RoomNumber, "room", "", "room number")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSigninCmd(app *App) *cobra.Command {
	var in api.SigninInput

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Signin(cmd.Context(), in); err != nil {
				return errors.New(app.Session.State().Error)
			}

			s := app.Session.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>.\n", s.User.Username, s.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Session.State()
			if !s.Authenticated {
				return errNotSignedIn
			}

			out := cmd.OutOrStdout()
			if !remote {
				fmt.Fprintf(out, "%s <%s> role=%s expires=%s\n",
					s.User.Username, s.User.Email, s.User.Role,
					time.Unix(s.User.ExpiresAt, 0).Format(time.RFC3339))
				return nil
			}

			me, err := app.API.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s <%s> role=%s id=%s\n", me.Username, me.Email, me.Role, me.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "ask the server instead of reading the local session")
	return cmd
}

var errNotSignedIn = errors.New(`not signed in; run "duvidha signin"`)

func newComplaintsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complaints",
		Short: "File and track complaints",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !app.Session.State().Authenticated {
				return errNotSignedIn
			}
			return nil
		},
	}

	var in api.CreateComplaintInput
	create := &cobra.Command{
		Use:   "create",
		Short: "File a new complaint",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.API.CreateComplaint(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Complaint %s filed (%s).\n", c.ID, c.Status)
			return nil
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "short summary")
	create.Flags().StringVar(&in.Description, "description", "", "details")
	create.Flags().StringVar(&in.Category, "category", "", "category (default "+complaint.DefaultCategory+")")
	create.Flags().StringVar(&in.RoomNumber, "room", "", "room number")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List complaints visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.API.ListComplaints(cmd.Context())
			if err != nil {
				return err
			}
			return printComplaints(cmd.OutOrStdout(), items)
		},
	}

	status := &cobra.Command{
		Use:   "status <id> <pending|in_progress|resolved>",
		Short: "Change a complaint's status (maintainers only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid complaint id %q", args[0])
			}
			st, err := complaint.ParseStatus(args[1])
			if err != nil {
				return err
			}

			c, err := app.API.UpdateComplaintStatus(cmd.Context(), id, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Complaint %s is now %s.\n", c.ID, c.Status)
			return nil
		},
	}

	cmd.AddCommand(create, list, status)
	return cmd
}

func printComplaints(w io.Writer, items []complaint.Complaint) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No complaints.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tROOM\tTITLE\tFILED")
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Status, c.Category, c.RoomNumber, c.Title, c.CreatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}
