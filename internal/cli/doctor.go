// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Health checks for drillrun.
//
// Command: doctor
//
// Health Checks Performed:
//  1. Ollama Installed   - Checks if the Ollama CLI is available
//  2. Ollama Running     - Checks if the Ollama server is responding
//  3. Model Available    - Checks if the configured model is downloaded
//  4. Config Valid       - Validates the configuration file
//  5. Database           - Opens the practice database and reads stats
//  6. Transcripts        - Checks transcript directory permissions
//  7. Cloud Providers    - Reports configured cloud API keys (optional)
//
// Exit Codes:
//
//	0   All checks passed
//	1   One or more checks failed
package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/drillrun-tui/internal/config"
	"github.com/jeranaias/drillrun-tui/internal/ollama"
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	doctorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginBottom(1)

	checkPassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	checkWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	checkFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	checkMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Symbol returns the rendered status marker.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return checkPassStyle.Render("[OK]")
	case CheckWarn:
		return checkWarnStyle.Render("[!!]")
	case CheckFail:
		return checkFailStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix command or instruction
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), checkMsgStyle.Render(c.Message))
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor handles the "doctor" command.
func HandleDoctor(args Args) error {
	checks := runAllChecks()

	passed := 0
	warned := 0
	failed := 0
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	if args.JSON {
		return handleDoctorJSON(checks, passed, warned, failed)
	}

	fmt.Println()
	fmt.Println(doctorTitleStyle.Render("drillrun Doctor"))
	fmt.Println(summaryStyle.Render(strings.Repeat("=", 41)))
	fmt.Println()

	for _, check := range checks {
		fmt.Println(check.Render())
	}

	fmt.Println()
	fmt.Println(summaryStyle.Render(strings.Repeat("-", 41)))

	summaryParts := []string{
		fmt.Sprintf("%d passed", passed),
	}
	if warned > 0 {
		summaryParts = append(summaryParts, checkWarnStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	if failed > 0 {
		summaryParts = append(summaryParts, checkFailStyle.Render(fmt.Sprintf("%d failed", failed)))
	}

	fmt.Println(summaryStyle.Render(strings.Join(summaryParts, ", ")))
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d health check(s) failed", failed)
	}

	return nil
}

// DoctorCheck is the JSON shape of a single health check.
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// DoctorSummary is the JSON summary of a doctor run.
type DoctorSummary struct {
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// DoctorData is the JSON payload for the doctor command.
type DoctorData struct {
	Checks  []DoctorCheck `json:"checks"`
	Summary DoctorSummary `json:"summary"`
}

// handleDoctorJSON outputs doctor results in JSON format.
func handleDoctorJSON(checks []*HealthCheck, passed, warned, failed int) error {
	jsonChecks := make([]DoctorCheck, 0, len(checks))
	for _, check := range checks {
		status := "pass"
		switch check.Status {
		case CheckWarn:
			status = "warn"
		case CheckFail:
			status = "fail"
		}

		jsonChecks = append(jsonChecks, DoctorCheck{
			Name:    check.Name,
			Status:  status,
			Message: check.Message,
			Fix:     check.Fix,
		})
	}

	data := DoctorData{
		Checks: jsonChecks,
		Summary: DoctorSummary{
			Passed:  passed,
			Warned:  warned,
			Failed:  failed,
			Healthy: failed == 0,
		},
	}

	resp := NewJSONResponse("doctor", data)
	if failed > 0 {
		errMsg := fmt.Sprintf("%d health check(s) failed", failed)
		resp.Success = false
		resp.Error = &errMsg
	}

	return resp.Print()
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// runAllChecks runs all health checks and returns the results.
func runAllChecks() []*HealthCheck {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	return []*HealthCheck{
		checkOllamaInstalled(),
		checkOllamaRunning(cfg),
		checkModelAvailable(cfg),
		checkConfigValid(),
		checkDatabase(cfg),
		checkTranscriptsWritable(cfg),
		checkCloudConfigured(cfg),
	}
}

// checkOllamaInstalled checks if the Ollama CLI is installed.
func checkOllamaInstalled() *HealthCheck {
	check := &HealthCheck{
		Name: "Ollama Installed",
	}

	cmd := exec.Command("ollama", "--version")
	output, err := cmd.Output()
	if err != nil {
		check.Status = CheckWarn
		check.Message = "Ollama not installed (local models unavailable)"
		if runtime.GOOS == "windows" {
			check.Fix = "Download from https://ollama.ai/download"
		} else if runtime.GOOS == "darwin" {
			check.Fix = "Run: brew install ollama"
		} else {
			check.Fix = "Run: curl -fsSL https://ollama.ai/install.sh | sh"
		}
		return check
	}

	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	version := "unknown"
	if len(parts) > 0 {
		version = parts[len(parts)-1]
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Ollama installed (v%s)", version)
	return check
}

// checkOllamaRunning checks if the Ollama server is responding.
func checkOllamaRunning(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Ollama Running",
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Local.OllamaURL,
		Timeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.CheckRunning(ctx); err != nil {
		check.Status = CheckWarn
		check.Message = "Ollama server not running (cloud models still work)"
		check.Fix = "Run: ollama serve"
		return check
	}

	check.Status = CheckPass
	check.Message = "Ollama running"
	return check
}

// checkModelAvailable checks if the configured default model is downloaded.
func checkModelAvailable(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Model Available",
	}

	modelName := cfg.DefaultModel
	if modelName == "" {
		check.Status = CheckPass
		check.Message = "No default model pinned (first available is used)"
		return check
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Local.OllamaURL,
		Timeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Could not check model: %s", err)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", modelName)
		return check
	}

	found := false
	for _, m := range models {
		if m.Name == modelName || strings.HasPrefix(m.Name, modelName+":") {
			found = true
			break
		}
	}

	if !found {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Model not downloaded: %s", modelName)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", modelName)
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Model available: %s", modelName)
	return check
}

// checkConfigValid checks if the configuration file loads and validates.
func checkConfigValid() *HealthCheck {
	check := &HealthCheck{
		Name: "Config Valid",
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		check.Status = CheckWarn
		check.Message = "Could not determine config path"
		return check
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		check.Status = CheckPass
		check.Message = "Config valid (using defaults)"
		return check
	}

	cfg, err := config.Load()
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", err)
		check.Fix = fmt.Sprintf("Fix or remove %s", configPath)
		return check
	}

	if err := cfg.Validate(); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", err)
		check.Fix = fmt.Sprintf("Fix or remove %s", configPath)
		return check
	}

	check.Status = CheckPass
	check.Message = "Config valid"
	return check
}

// checkDatabase opens the practice database and reads the stats row counts.
func checkDatabase(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Database",
	}

	store, err := openStore()
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not open database: %s", err)
		return check
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := store.GetStats(ctx)
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Database query failed: %s", err)
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Database open (%d problems, %d cards)", stats.ProblemCount, stats.CardCount)
	return check
}

// checkTranscriptsWritable checks the transcript directory permissions.
func checkTranscriptsWritable(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Transcripts",
	}

	dir := cfg.Storage.TranscriptDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			check.Status = CheckFail
			check.Message = fmt.Sprintf("Could not find home directory: %s", err)
			return check
		}
		dir = filepath.Join(home, ".drillrun", "transcripts")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not create transcript directory: %s", err)
		check.Fix = fmt.Sprintf("Create manually: mkdir -p %s", dir)
		return check
	}

	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Transcript directory not writable: %s", err)
		check.Fix = fmt.Sprintf("Check permissions: chmod 755 %s", dir)
		return check
	}
	os.Remove(testFile)

	check.Status = CheckPass
	check.Message = "Transcript directory writable"
	return check
}

// checkCloudConfigured reports which cloud providers have keys.
func checkCloudConfigured(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Cloud Providers",
	}

	var configured []string
	if cfg.Cloud.OpenAIKey != "" {
		configured = append(configured, "openai")
	}
	if cfg.Cloud.OpenRouterKey != "" {
		configured = append(configured, "openrouter")
	}
	if cfg.Cloud.AzureEndpoint != "" && cfg.Cloud.AzureKey != "" {
		configured = append(configured, "azure")
	}

	if len(configured) == 0 {
		check.Status = CheckWarn
		check.Message = "No cloud providers configured (local only)"
		check.Fix = "Add an API key under [cloud] in the config file"
		return check
	}

	if cfg.Cloud.OpenRouterKey != "" && !strings.HasPrefix(cfg.Cloud.OpenRouterKey, "sk-or-") {
		check.Status = CheckWarn
		check.Message = "OpenRouter key format may be invalid"
		check.Fix = "Get key from https://openrouter.ai/keys"
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Cloud configured: %s", strings.Join(configured, ", "))
	return check
}
