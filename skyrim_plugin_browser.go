package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/critterman/skyrim_plugin_browser/config"
	"github.com/critterman/skyrim_plugin_browser/esp"
	"github.com/critterman/skyrim_plugin_browser/report"
	"github.com/critterman/skyrim_plugin_browser/web"
)

var (
	flagConfig   string
	flagEncoding string
	flagFormat   string
	flagPretty   bool
	flagAddr     string
)

var settings = config.DefaultSettings()

func setup(cmd *cobra.Command, args []string) error {
	s, err := config.LoadSettings(flagConfig)
	if err != nil {
		return err
	}
	settings = s

	if !cmd.Flags().Changed("format") && settings.Format != "" {
		flagFormat = settings.Format
	}
	if !cmd.Flags().Changed("pretty") {
		flagPretty = settings.Pretty
	}
	if !cmd.Flags().Changed("addr") && settings.ListenAddr != "" {
		flagAddr = settings.ListenAddr
	}

	encoding := settings.Encoding
	if cmd.Flags().Changed("encoding") {
		encoding = flagEncoding
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			return err
		}
	}
	return nil
}

func printPlugin(plugin *esp.Plugin) error {
	switch flagFormat {
	case "json":
		return report.WriteJSON(os.Stdout, plugin, flagPretty)
	case "text", "":
		return report.WriteText(os.Stdout, plugin)
	case "dump":
		return report.WriteDump(os.Stdout, plugin)
	}
	return errors.Errorf("Unknown output format %q (want json, text or dump)", flagFormat)
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "Failed to read plugin file %q", args[0])
	}
	plugin, err := esp.ParsePlugin(data)
	if err != nil {
		return errors.Wrapf(err, "Failed to parse plugin file %q", args[0])
	}
	return printPlugin(plugin)
}

func runScan(cmd *cobra.Command, args []string) error {
	dir := web.NewPluginDir(args[0])
	files, err := dir.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("No plugin files in %q", args[0])
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("parsing plugins"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	type result struct {
		name   string
		plugin *esp.Plugin
		err    error
	}
	results := make([]result, 0, len(files))
	for _, name := range files {
		plugin, err := dir.Plugin(name)
		results = append(results, result{name: name, plugin: plugin, err: err})
		bar.Add(1)
	}
	fmt.Fprintln(os.Stderr)

	totalWorlds, totalCells, failed := 0, 0, 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Printf("%-32s ERROR %v\n", r.name, r.err)
			continue
		}
		fmt.Printf("%-32s author %-24q %3d masters %3d worlds %6d cells\n",
			r.name, r.plugin.Header.Author, len(r.plugin.Header.Masters),
			r.plugin.Worlds.Len(), len(r.plugin.Cells))
		totalWorlds += r.plugin.Worlds.Len()
		totalCells += len(r.plugin.Cells)
	}
	fmt.Printf("\n%d plugins, %d worlds, %d cells, %d failed\n",
		len(results)-failed, totalWorlds, totalCells, failed)

	if failed == len(results) {
		return errors.New("No plugin parsed successfully")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	dataDir := settings.DataDir
	if len(args) == 1 {
		dataDir = args[0]
	}
	return web.StartServer(flagAddr, web.NewPluginDir(dataDir))
}

func runEncodings(cmd *cobra.Command, args []string) {
	for _, name := range config.ListEncodings() {
		fmt.Println(name)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:               "skyrim_plugin_browser <plugin>",
		Short:             "Extracts world and cell placement data from Skyrim plugin files",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: setup,
		RunE:              runExtract,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config",
		filepath.Join(".", "browser.yaml"), "path to settings file")
	rootCmd.PersistentFlags().StringVarP(&flagEncoding, "encoding", "e", "",
		"codepage of plugin strings (see the encodings command)")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "output format: json, text or dump")
	rootCmd.Flags().BoolVarP(&flagPretty, "pretty", "p", false, "pretty print json output")

	scanCmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Parse every plugin in a directory and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	serveCmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve parsed plugins over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&flagAddr, "addr", "i", ":8000", "address of server")

	encodingsCmd := &cobra.Command{
		Use:   "encodings",
		Short: "List the codepages usable with -e",
		Run:   runEncodings,
	}

	rootCmd.AddCommand(scanCmd, serveCmd, encodingsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
