package main

import (
	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/config"
)

var envFlags struct {
	files          []string
	browserBuild   bool
	externalHost   string
	includeEnviron bool
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Validate deployment env files",
	Long: `Validate the env files a RAG deployment is started with.

Subcommands:
  check  - Resolve the files once and report every violation
  watch  - Re-check whenever one of the files changes`,
}

var envCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check env files for configuration errors",
	Long: `Check env files for configuration errors.

Files are read in order; later files override earlier ones. Every violation
is reported, not just the first:

  - RERANKER_TYPE must be one of alibaba, bge, ms-marco
  - RERANKER_TYPE=alibaba needs ALIBABA_API_KEY or DASHSCOPE_API_KEY
  - NEXT_PUBLIC_API_URL and NEXT_PUBLIC_AUTH_URL must be http(s) URLs, must
    not point at localhost in a browser build, and must use the external host

Examples:
  # Check the configured files
  ragdoctor env check

  # Check a specific file against the public host name
  ragdoctor env check --file .env.production --external-host rag.example.com

  # Server-side build: loopback URLs are allowed
  ragdoctor env check --browser-build=false`,
	RunE: runEnvCheck,
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.AddCommand(envCheckCmd)

	envCmd.PersistentFlags().StringSliceVarP(&envFlags.files, "file", "f", nil, "env file to check (repeatable, later files win)")
	envCmd.PersistentFlags().BoolVar(&envFlags.browserBuild, "browser-build", true, "NEXT_PUBLIC_* values are served to browsers")
	envCmd.PersistentFlags().StringVar(&envFlags.externalHost, "external-host", "", "host the public URLs must use")
	envCmd.PersistentFlags().BoolVar(&envFlags.includeEnviron, "include-environ", false, "let the process environment override file values")
}

func runEnvCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyEnvFlags(cmd, &cfg.Env)

	s := openSession(cfg, sessionOptions{})
	defer s.Close()

	return report(cmd, s.doctor.CheckEnv(cmd.Context()))
}

// applyEnvFlags overrides the env section with the flags that were set.
func applyEnvFlags(cmd *cobra.Command, cfg *config.EnvConfig) {
	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.Files = envFlags.files
	}
	if flags.Changed("browser-build") {
		b := envFlags.browserBuild
		cfg.BrowserBuild = &b
	}
	if flags.Changed("external-host") {
		cfg.ExternalHost = envFlags.externalHost
	}
	if flags.Changed("include-environ") {
		cfg.IncludeEnviron = envFlags.includeEnviron
	}
}
