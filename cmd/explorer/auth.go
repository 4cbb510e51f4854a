package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pokefinder-cloud/internal/explorer"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			username, err = promptLine("username: ")
			if err != nil {
				return err
			}
		}
		password, err := promptPassword("password: ")
		if err != nil {
			return err
		}
		profile, err := client.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", profile.Username)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		input := explorer.RegisterInput{}
		input.Username, _ = cmd.Flags().GetString("username")
		input.Email, _ = cmd.Flags().GetString("email")
		input.FirstName, _ = cmd.Flags().GetString("first-name")
		input.LastName, _ = cmd.Flags().GetString("last-name")
		if input.Username == "" {
			input.Username, err = promptLine("username: ")
			if err != nil {
				return err
			}
		}
		input.Password, err = promptPassword("password: ")
		if err != nil {
			return err
		}
		profile, err := client.Register(cmd.Context(), input)
		if err != nil {
			return err
		}
		fmt.Printf("registered and signed in as %s\n", profile.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session and clear local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		// The local session is cleared even if revocation fails.
		if err := client.Logout(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "server-side revocation failed: %v\n", err)
		}
		fmt.Println("signed out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "account username")
	registerCmd.Flags().StringP("username", "u", "", "account username")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
