package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	apiBaseURL  string
	accessToken string
)

type ResponseError struct {
	Message string `json:"message"`
}

type UserResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResult struct {
	AccessToken string     `json:"accessToken"`
	User        UserResult `json:"user"`
}

func apiServiceBase() *resty.Client {
	client := resty.New().
		SetBaseURL(apiBaseURL).
		SetHeader("Accept", "application/json").
		SetError(&ResponseError{}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				return fmt.Errorf("%s", resp.Error().(*ResponseError).Message)
			}

			return nil
		})
	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}
	return client
}

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "Authgate CLI",
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in and print an access token",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"email":    args[0],
				"password": args[1],
			}).
			SetResult(&LoginResult{}).
			Post("/login")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		result := resp.Result().(*LoginResult)

		fmt.Println("User ID      :", result.User.ID)
		fmt.Println("Role         :", result.User.Role)
		fmt.Println("Access token :", result.AccessToken)
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email> <password>",
	Short: "Create a new user",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		type signupResult struct {
			User UserResult `json:"user"`
		}

		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"email":    args[0],
				"password": args[1],
			}).
			SetResult(&signupResult{}).
			Post("/signup")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*signupResult).User

		fmt.Println("User ID :", user.ID)
		fmt.Println("Email   :", user.Email)
		fmt.Println("Role    :", user.Role)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Run: func(cmd *cobra.Command, args []string) {
		type listResult struct {
			Count int          `json:"count"`
			Users []UserResult `json:"users"`
		}

		resp, err := apiServiceBase().R().
			SetResult(&listResult{}).
			Get("/admin/users")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		result := resp.Result().(*listResult)

		for _, user := range result.Users {
			fmt.Printf("%s  %-10s %s\n", user.ID, user.Role, user.Email)
		}
		fmt.Println("Total:", result.Count)
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, err := apiServiceBase().R().
			Delete("/admin/users/" + args[0])

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		fmt.Println("User deleted")
	},
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <id> <role>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		type roleResult struct {
			User UserResult `json:"user"`
		}

		resp, err := apiServiceBase().R().
			SetBody(map[string]string{"role": args[1]}).
			SetResult(&roleResult{}).
			Put("/admin/users/" + args[0] + "/role")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*roleResult).User

		fmt.Println("User ID :", user.ID)
		fmt.Println("Email   :", user.Email)
		fmt.Println("Role    :", user.Role)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "http://localhost:3000", "API base URL")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", "", "Access token for protected routes")

	rootCmd.AddCommand(loginCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userSetRoleCmd)
	rootCmd.AddCommand(userCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
