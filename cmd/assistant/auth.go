package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Log in to the assistant backend",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}
	rootCmd.AddCommand(loginCmd)

	registerCmd := &cobra.Command{
		Use:   "register EMAIL",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegister,
	}
	rootCmd.AddCommand(registerCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		RunE:  runLogout,
	}
	rootCmd.AddCommand(logoutCmd)
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := app.auth.Login(ctx, args[0], password); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", args[0])
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptSecret("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := app.auth.Register(ctx, args[0], password); err != nil {
		return err
	}

	fmt.Printf("Registered %s, you can now log in\n", args[0])
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	if err := app.auth.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("Logged out")
	return nil
}
