// Package register implements the "register" subcommand, which writes this
// binary into an MCP client configuration file.
package register

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

type serverEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Run executes the register subcommand. args is everything after "register":
//
//	symdex-mcp register project [directory] [-- server flags]
//	symdex-mcp register user [-- server flags]
func Run(serverName string, args []string) error {
	if len(args) == 0 {
		return usageError()
	}

	scope := args[0]
	if scope != "project" && scope != "user" {
		fmt.Fprintf(os.Stderr, "Error: unknown scope %q (must be \"project\" or \"user\")\n", scope)
		return usageError()
	}

	directory, serverArgs := splitArgs(args[1:], scope == "project")

	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("detecting binary path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(binaryPath); err == nil {
		binaryPath = resolved
	}

	configPath, err := configPath(scope, directory)
	if err != nil {
		return err
	}

	if err := writeConfig(configPath, serverName, buildEntry(binaryPath, serverArgs)); err != nil {
		return err
	}

	fmt.Printf("Registered %q in %s\n", serverName, configPath)
	return nil
}

func usageError() error {
	binaryName := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s register project [directory]  # → <directory>/.mcp.json (default: .)\n", binaryName)
	fmt.Fprintf(os.Stderr, "  %s register user                 # → ~/.claude.json\n", binaryName)
	fmt.Fprintf(os.Stderr, "  %s register project . -- --flag  # forward flags to the server\n", binaryName)
	return fmt.Errorf("invalid register arguments")
}

// DeriveServerName strips .exe and -mcp suffixes from a binary path.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	return strings.TrimSuffix(name, "-mcp")
}

// splitArgs separates the optional directory argument from flags forwarded
// after "--".
func splitArgs(args []string, wantDirectory bool) (directory string, serverArgs []string) {
	directory = "."
	for i, arg := range args {
		if arg == "--" {
			return directory, args[i+1:]
		}
		if i == 0 && wantDirectory {
			directory = arg
		}
	}
	return directory, nil
}

func configPath(scope string, directory string) (string, error) {
	if scope == "project" {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

func buildEntry(binaryPath string, serverArgs []string) serverEntry {
	if runtime.GOOS == "windows" {
		return serverEntry{Command: "cmd", Args: append([]string{"/C", binaryPath}, serverArgs...)}
	}
	return serverEntry{Command: binaryPath, Args: serverArgs}
}

// writeConfig merges the entry into the config file, creating it if needed.
// The write is atomic: temp file in the same directory, then rename.
func writeConfig(configPath string, serverName string, entry serverEntry) error {
	config := map[string]any{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	}

	servers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		if _, exists := config["mcpServers"]; exists {
			return fmt.Errorf("mcpServers in %s is not an object", configPath)
		}
		servers = map[string]any{}
	}
	servers[serverName] = entry
	config["mcpServers"] = servers

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	tmpFile, err := os.CreateTemp(filepath.Dir(configPath), ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", configPath, err)
	}
	return nil
}
