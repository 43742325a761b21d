package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "passvault",
	Short: "PassVault CLI",
	Long:  "A CLI for managing credentials in PassVault.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig()
		// Env var overrides are applied in newClient()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table, json, raw")
	rootCmd.PersistentFlags().StringVar(&outputField, "field", "", "Print only this field (use with -format=raw)")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(meCmd())
	rootCmd.AddCommand(credCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(webdavCmd())
	rootCmd.AddCommand(generateCmd())
}

// --- auth ---

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and save the session token (requires dev_login on the server)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.post("/auth/login", map[string]any{"username": args[0]})
			if err != nil {
				printError(err.Error())
				return nil
			}
			if tok, ok := result["token"].(string); ok {
				cfg.Token = tok
				if err := saveConfig(); err == nil {
					fmt.Fprintln(os.Stderr, "Token saved to config.")
				}
			}
			printResult(result)
			return nil
		},
	}
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Terminate the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if _, err := client.post("/auth/logout", nil); err != nil {
				printError(err.Error())
				return nil
			}
			cfg.Token = ""
			saveConfig() //nolint:errcheck
			printSuccess("Logged out.")
			return nil
		},
	}
}

func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/auth/me")
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
}

// --- credentials ---

func credCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cred", Short: "Manage credentials"}

	addCmd := &cobra.Command{
		Use:   "add <site>",
		Short: "Add a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			category, _ := cmd.Flags().GetString("category")
			url, _ := cmd.Flags().GetString("url")
			notes, _ := cmd.Flags().GetString("notes")

			if username == "" {
				username = promptLine("Username")
			}
			if password == "" {
				var err error
				password, err = promptPassword("Password")
				if err != nil {
					printError(err.Error())
					return nil
				}
			}

			client := newClient()
			result, err := client.post("/credentials", map[string]any{
				"siteName": args[0],
				"username": username,
				"password": password,
				"category": category,
				"url":      url,
				"notes":    notes,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
	addCmd.Flags().String("username", "", "Account username")
	addCmd.Flags().String("password", "", "Account password (prompted if omitted)")
	addCmd.Flags().String("category", "", "Category label")
	addCmd.Flags().String("url", "", "Site URL")
	addCmd.Flags().String("notes", "", "Free-form notes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List credentials (passwords masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/credentials")
			if err != nil {
				printError(err.Error())
				return nil
			}
			if creds, ok := result["credentials"].([]any); ok && outputFormat == "table" {
				for _, c := range creds {
					if rec, ok := c.(map[string]any); ok {
						fmt.Printf("%v\t%v\t%v\t%v\n", rec["id"], rec["siteName"], rec["username"], rec["category"])
					}
				}
				return nil
			}
			printResult(result)
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a credential (password masked)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/credentials/" + args[0])
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	revealCmd := &cobra.Command{
		Use:   "reveal <id>",
		Short: "Print the plaintext password of a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/credentials/" + args[0] + "/reveal")
			if err != nil {
				printError(err.Error())
				return nil
			}
			if pw, ok := result["password"].(string); ok && outputFormat == "table" {
				fmt.Println(pw)
				return nil
			}
			printResult(result)
			return nil
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}
			for _, name := range []string{"site", "username", "category", "url", "notes"} {
				if cmd.Flags().Changed(name) {
					v, _ := cmd.Flags().GetString(name)
					field := name
					if name == "site" {
						field = "siteName"
					}
					body[field] = v
				}
			}
			if changed, _ := cmd.Flags().GetBool("prompt-password"); changed {
				pw, err := promptPassword("New password")
				if err != nil {
					printError(err.Error())
					return nil
				}
				body["password"] = pw
			}
			if len(body) == 0 {
				printError("nothing to update")
				return nil
			}
			client := newClient()
			result, err := client.put("/credentials/"+args[0], body)
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
	updateCmd.Flags().String("site", "", "New site name")
	updateCmd.Flags().String("username", "", "New username")
	updateCmd.Flags().String("category", "", "New category")
	updateCmd.Flags().String("url", "", "New URL")
	updateCmd.Flags().String("notes", "", "New notes")
	updateCmd.Flags().Bool("prompt-password", false, "Prompt for a new password")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if err := client.delete("/credentials/" + args[0]); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Success! Credential deleted.")
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, getCmd, revealCmd, updateCmd, deleteCmd)
	return cmd
}

// --- categories ---

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "categories", Short: "Manage category labels"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/categories")
			if err != nil {
				printError(err.Error())
				return nil
			}
			if cats, ok := result["categories"].([]any); ok && outputFormat == "table" {
				for _, c := range cats {
					fmt.Println(c)
				}
				return nil
			}
			printResult(result)
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.post("/categories", map[string]any{"name": args[0]})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a category (credentials keep their label)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if err := client.delete("/categories/" + args[0]); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Success! Category removed.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd)
	return cmd
}

// --- export / import ---

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the vault as a passphrase-encrypted snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase, err := promptPassword("Export password")
			if err != nil {
				printError(err.Error())
				return nil
			}
			client := newClient()
			resp, err := client.do("POST", "/vault/export", map[string]any{"exportPassword": passphrase})
			if err != nil {
				printError(err.Error())
				return nil
			}
			result, err := parseResponse(resp)
			if err != nil {
				printError(err.Error())
				return nil
			}
			data, err := jsonMarshalIndent(result)
			if err != nil {
				printError(err.Error())
				return nil
			}
			if err := os.WriteFile(args[0], data, 0600); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Exported to " + args[0])
			return nil
		},
	}
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an encrypted snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				printError(err.Error())
				return nil
			}
			var envelope map[string]any
			if err := jsonUnmarshal(data, &envelope); err != nil {
				printError(err.Error())
				return nil
			}
			encrypted, _ := envelope["data"].(string)
			if encrypted == "" {
				printError("file does not contain an encrypted snapshot")
				return nil
			}
			passphrase, err := promptPassword("Import password")
			if err != nil {
				printError(err.Error())
				return nil
			}
			client := newClient()
			result, err := client.post("/vault/import", map[string]any{
				"encryptedData":  encrypted,
				"importPassword": passphrase,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
	return cmd
}

// --- webdav ---

func webdavCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "webdav", Short: "WebDAV backup commands"}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or set the WebDAV configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			username, _ := cmd.Flags().GetString("username")
			client := newClient()
			if url == "" && username == "" {
				result, err := client.get("/webdav/config")
				if err != nil {
					printError(err.Error())
					return nil
				}
				printResult(result)
				return nil
			}
			password, err := promptPassword("WebDAV password")
			if err != nil {
				printError(err.Error())
				return nil
			}
			result, err := client.post("/webdav/config", map[string]any{
				"url":      url,
				"username": username,
				"password": password,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
	configCmd.Flags().String("url", "", "WebDAV base URL")
	configCmd.Flags().String("username", "", "WebDAV username")

	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload an encrypted backup to the WebDAV server",
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, _ := cmd.Flags().GetString("filename")
			passphrase, err := promptPassword("Backup password")
			if err != nil {
				printError(err.Error())
				return nil
			}
			client := newClient()
			body := map[string]any{"backupPassword": passphrase}
			if filename != "" {
				body["filename"] = filename
			}
			result, err := client.post("/webdav/backup", body)
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
	backupCmd.Flags().String("filename", "", "Remote filename (default: password-backup-<date>.json)")

	restoreCmd := &cobra.Command{
		Use:   "restore <filename>",
		Short: "Restore credentials from a WebDAV backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase, err := promptPassword("Restore password")
			if err != nil {
				printError(err.Error())
				return nil
			}
			client := newClient()
			result, err := client.post("/webdav/restore", map[string]any{
				"filename":        args[0],
				"restorePassword": passphrase,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete a backup file from the WebDAV server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.post("/webdav/delete", map[string]any{"filename": args[0]})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List backup files on the WebDAV server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.post("/webdav/list", nil)
			if err != nil {
				printError(err.Error())
				return nil
			}
			if files, ok := result["files"].([]any); ok && outputFormat == "table" {
				for _, f := range files {
					fmt.Println(f)
				}
				return nil
			}
			printResult(result)
			return nil
		},
	}

	cmd.AddCommand(configCmd, backupCmd, restoreCmd, deleteCmd, listCmd)
	return cmd
}

// --- generate ---

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password",
		RunE: func(cmd *cobra.Command, args []string) error {
			length, _ := cmd.Flags().GetInt("length")
			symbols, _ := cmd.Flags().GetBool("symbols")
			url := fmt.Sprintf("/generate?length=%d", length)
			if !symbols {
				url += "&symbols=false"
			}
			client := newClient()
			result, err := client.get(url)
			if err != nil {
				printError(err.Error())
				return nil
			}
			if pw, ok := result["password"].(string); ok && outputFormat == "table" {
				fmt.Println(pw)
				return nil
			}
			printResult(result)
			return nil
		},
	}
	cmd.Flags().Int("length", 16, "Password length (4-128)")
	cmd.Flags().Bool("symbols", true, "Include symbols")
	return cmd
}
