package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/iliyamo/insurance-catalog/internal/client"
	"github.com/iliyamo/insurance-catalog/internal/model"
)

// currency is the label prices are shown with.  Stored prices carry no
// currency.
const currency = "USD"

func formatPrice(p float64) string {
	return fmt.Sprintf("%s %.2f", currency, p)
}

func newProductsCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally filtered by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			err := a.spin(cmd.Context(), cmd.ErrOrStderr(), "Loading products...", a.catalog.Fetch)
			if err != nil {
				if client.IsUnauthenticated(err) {
					return authErr(err)
				}
				return fmt.Errorf("%s", a.catalog.Error())
			}

			a.catalog.SetSelectedType(matchType(a.catalog.Types(), typ))
			out := cmd.OutOrStdout()
			renderProducts(out, a.catalog.Filtered())
			fmt.Fprintf(out, "%s %s\n", text.FgHiBlue.Sprint("Types:"), strings.Join(a.catalog.Types(), ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", client.AllTypes, "product type to show (ALL for every type)")
	return cmd
}

// matchType resolves want against the known types case-insensitively.
// Unknown types are kept verbatim and simply match nothing.
func matchType(known []string, want string) string {
	if want == "" {
		return client.AllTypes
	}
	for _, k := range known {
		if strings.EqualFold(k, want) {
			return k
		}
	}
	return want
}

func newProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "product <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			var p *model.Product
			err := a.spin(cmd.Context(), cmd.ErrOrStderr(), "Loading product...", func(ctx context.Context) error {
				var err error
				p, err = a.api.GetProduct(ctx, args[0])
				return err
			})
			if err != nil {
				return authErr(err)
			}
			description := ""
			if p.Description != nil {
				description = *p.Description
			}
			renderKV(cmd.OutOrStdout(), [][2]string{
				{"Product ID", p.ProductID},
				{"Name", p.Name},
				{"Type", p.Type},
				{"Coverage", p.Coverage},
				{"Price", formatPrice(p.Price)},
				{"Description", description},
				{"Active", fmt.Sprint(p.IsActive)},
			})
			return nil
		},
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderProducts(w io.Writer, ps []model.Product) {
	if len(ps) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No products found"))
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Type", "Coverage", "Price"})
	for _, p := range ps {
		t.AppendRow(table.Row{p.ProductID, p.Name, p.Type, p.Coverage, formatPrice(p.Price)})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(ps)})
	t.Render()
}

func renderKV(w io.Writer, rows [][2]string) {
	t := newTable(w)
	for _, r := range rows {
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(r[0]), r[1]})
	}
	t.Render()
}
