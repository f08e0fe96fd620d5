package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

func (c *cli) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewLogin); err != nil {
				return err
			}
			user, pass, err := c.credentials(cmd, username, password)
			if err != nil {
				return err
			}
			return c.printResult(cmd, c.app.Sessions.Login(cmd.Context(), user, pass), "Signed in.")
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewRegister); err != nil {
				return err
			}
			user, pass, err := c.credentials(cmd, username, password)
			if err != nil {
				return err
			}
			return c.printResult(cmd, c.app.Sessions.Register(cmd.Context(), user, pass), "")
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := c.app.Sessions.Logout(cmd.Context())
			if result.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", result.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			printStatus(cmd.OutOrStdout(), c.app.Sessions.Status())
			return nil
		},
	}
}

// credentials fills in the username from stdin and the password from the terminal when
// they were not passed as flags.
func (c *cli) credentials(cmd *cobra.Command, username, password string) (string, string, error) {
	out := cmd.ErrOrStderr()
	if strings.TrimSpace(username) == "" {
		fmt.Fprint(out, "Username: ")
		line, err := bufio.NewReader(c.in).ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Fprint(out, "Password: ")
		raw, err := readPasswordFunc(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}
	return username, password, nil
}

func (c *cli) printResult(cmd *cobra.Command, result models.AuthResult, success string) error {
	if !result.OK {
		return errors.New(result.Message)
	}
	message := result.Message
	if message == "" {
		message = success
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}
