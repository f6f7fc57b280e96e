package main

import (
	"fmt"
	"io"

	"github.com/lpms-app/lpms/internal/config"
	"github.com/lpms-app/lpms/internal/nav"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light]",
	Short:     "Show or persist the console theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{config.ThemeDark, config.ThemeLight},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cfg.Theme)
			return err
		}

		prev := cfg.Theme
		cfg.Theme = args[0]
		if err := cfg.Validate(); err != nil {
			cfg.Theme = prev
			return err
		}
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "theme set to %s\n", cfg.Theme)
		return err
	},
}

var (
	linksMobile   bool
	linksScrolled bool
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Print the landing page navigation links",
	Long: `Prints the landing header. With --mobile the header is shown as on a
narrow screen after the menu button was pressed; --scrolled shows the header
background used once the page is scrolled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderLinks(cmd.OutOrStdout(), nav.NewMenu(nav.LandingItems), linksMobile, linksScrolled)
	},
}

func init() {
	linksCmd.Flags().BoolVar(&linksMobile, "mobile", false, "Render the mobile header with the menu opened")
	linksCmd.Flags().BoolVar(&linksScrolled, "scrolled", false, "Render the header as it looks after scrolling")
}

func renderLinks(out io.Writer, menu *nav.Menu, mobile, scrolled bool) error {
	menu.SetScrolled(scrolled)
	fmt.Fprintf(out, "header: %s\n", menu.Background())

	indent := ""
	if mobile {
		fmt.Fprintln(out, "[menu]")
		menu.Toggle()
		indent = "  "
	}
	if mobile && !menu.Open() {
		return nil
	}
	for _, item := range menu.Items {
		if _, err := fmt.Fprintf(out, "%s%-10s %s\n", indent, item.Name, item.Href); err != nil {
			return err
		}
	}
	return nil
}
