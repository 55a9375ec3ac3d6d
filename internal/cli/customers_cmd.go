package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealbrief/dealbrief/internal/customerdata"
)

func newCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage the customer store",
	}

	cmd.AddCommand(newCustomersListCmd())
	cmd.AddCommand(newCustomersShowCmd())
	cmd.AddCommand(newCustomersImportCmd())
	cmd.AddCommand(newCustomersDeleteCmd())
	return cmd
}

func openStore() (*customerdata.Store, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	return customerdata.OpenStore(storePath(loadConfig()), log)
}

func newCustomersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("no customers")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newCustomersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a customer's record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

// newCustomersImportCmd seeds the store from a JSON file mapping
// customer names to records:
//
//	{"Customer A": {"negotiation_style": "...", ...}, ...}
func newCustomersImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import customer records from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var records map[string]map[string]any
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for name, record := range records {
				if err := store.Put(cmd.Context(), name, record); err != nil {
					return fmt.Errorf("importing %q: %w", name, err)
				}
			}
			fmt.Printf("Imported %d customer(s)\n", len(records))
			return nil
		},
	}
}

func newCustomersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a customer from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
