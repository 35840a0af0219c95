package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/alpha-engine/backend/internal/ruleconfig"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Contradiction rule table",
	Long: `Inspect and validate the contradiction rule table.

Without --file the table named by RULES_FILE is used, falling back to the
built-in rules.

Subcommands:
  show      - print the table as YAML
  validate  - check a rule file
  hash      - print the table hash stamped on every analysis

Example:
  go run ./cmd/alpha rules show
  go run ./cmd/alpha rules validate config/rules.yaml`,
}

var (
	rulesFile string

	rulesShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the rule table",
		RunE:  runRulesShow,
	}

	rulesValidateCmd = &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a rule file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRulesValidate,
	}

	rulesHashCmd = &cobra.Command{
		Use:   "hash",
		Short: "Print the rule table hash",
		RunE:  runRulesHash,
	}
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesHashCmd)

	rulesShowCmd.Flags().StringVar(&rulesFile, "file", "", "rule file (default RULES_FILE)")
	rulesHashCmd.Flags().StringVar(&rulesFile, "file", "", "rule file (default RULES_FILE)")
}

// activeRules loads --file, else RULES_FILE, else the built-in table
func activeRules() (*ruleconfig.Config, error) {
	path := rulesFile
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.RulesFile
	}
	return ruleconfig.LoadOrDefault(path)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	cfg, err := activeRules()
	if err != nil {
		return err
	}

	out, err := ruleconfig.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := ruleconfig.Load(args[0])
	if err != nil {
		return err
	}

	hash, err := ruleconfig.Hash(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("✅ %s is valid: %s v%s, %d rules\n", args[0], cfg.Meta.Name, cfg.Meta.Version, len(cfg.Rules))
	fmt.Printf("   hash: %s\n", hash)
	return nil
}

func runRulesHash(cmd *cobra.Command, args []string) error {
	cfg, err := activeRules()
	if err != nil {
		return err
	}

	hash, err := ruleconfig.Hash(cfg)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
