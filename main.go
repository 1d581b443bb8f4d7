package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beyondbeauty/press/config"
	"github.com/beyondbeauty/press/database"
	"github.com/beyondbeauty/press/database/model"
	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/web"
	"github.com/beyondbeauty/press/web/service"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
	defer logger.CloseLogger()

	if err := database.InitDB(config.GetDBPath()); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()

	server := web.NewServer()
	if err := server.Start(); err != nil {
		logger.Error("start server:", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			logger.Info("reloading web server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			if err := server.Start(); err != nil {
				logger.Error("restart server:", err)
				return
			}
			continue
		}
		logger.Infof("received %v, shutting down", sig)
		if err := server.Stop(); err != nil {
			logger.Warning("stop server err:", err)
		}
		return
	}
}

// openDB is the preamble of every offline subcommand.
func openDB() {
	if err := database.InitDB(config.GetDBPath()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func migrateDb() {
	openDB()
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func setRole(email string, role string) {
	openDB()
	defer database.CloseDB()

	if err := service.NewAccountService().SetRole(email, model.Role(role)); err != nil {
		fmt.Println("set role failed:", err)
		return
	}
	fmt.Printf("%s is now %s\n", email, role)
}

func setActive(email string, active bool) {
	openDB()
	defer database.CloseDB()

	if err := service.NewAccountService().SetActive(email, active); err != nil {
		fmt.Println("set active failed:", err)
		return
	}
	fmt.Printf("%s active=%v\n", email, active)
}

func sweepAssets(dryRun bool) {
	openDB()
	defer database.CloseDB()

	assets, err := service.NewDiskAssetService()
	if err != nil {
		fmt.Println(err)
		return
	}
	refs, err := service.NewArticleService(assets).ImageRefs()
	if err != nil {
		fmt.Println("list referenced images failed:", err)
		return
	}
	if dryRun {
		orphans, err := assets.Orphans(refs)
		if err != nil {
			fmt.Println(err)
			return
		}
		for _, name := range orphans {
			fmt.Println(name)
		}
		fmt.Printf("%d unreferenced image(s)\n", len(orphans))
		return
	}
	removed, err := assets.Sweep(refs)
	if err != nil {
		fmt.Println("sweep failed:", err)
	}
	fmt.Printf("removed %d unreferenced image(s)\n", removed)
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Println(err)
	}

	var rootCmd = &cobra.Command{
		Use: config.GetName(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetVersion())
		},
	}

	var accountCmd = &cobra.Command{
		Use:   "account",
		Short: "Administer accounts",
	}

	var roleCmd = &cobra.Command{
		Use:   "role <email> <admin|editor>",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			setRole(args[0], args[1])
		},
	}

	var activeCmd = &cobra.Command{
		Use:   "active <email>",
		Short: "Enable or disable an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			disable, _ := cmd.Flags().GetBool("disable")
			setActive(args[0], !disable)
		},
	}
	activeCmd.Flags().Bool("disable", false, "disable instead of enable")

	accountCmd.AddCommand(roleCmd, activeCmd)

	var assetsCmd = &cobra.Command{
		Use:   "assets",
		Short: "Maintain uploaded images",
	}

	var sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Delete images no article references",
		Run: func(cmd *cobra.Command, args []string) {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			sweepAssets(dryRun)
		},
	}
	sweepCmd.Flags().Bool("dry-run", false, "only list unreferenced images")

	assetsCmd.AddCommand(sweepCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, versionCmd, accountCmd, assetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
