package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ephemera/internal/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var schemaFormat string

var schemaCmd = &cobra.Command{
	Use:   "schema [type]",
	Short: "Print the content model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "json", "output format: json or yaml")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	registry := schema.Registry()

	var value any = registry
	if len(args) == 1 {
		doc, ok := registry.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown document type %q", args[0])
		}
		value = doc
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	switch schemaFormat {
	case "json":
		cmd.Println(string(data))
	case "yaml":
		// 复用 json 标签
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		cmd.Print(string(out))
	default:
		return fmt.Errorf("unknown format %q", schemaFormat)
	}
	return nil
}
