package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"captionsearch/demo/client"
	"captionsearch/demo/tui"
)

func main() {
	// Load environment
	_ = godotenv.Load()

	apiURL := flag.String("url", client.GetEnvOrDefault("CAPTION_API_URL", "http://localhost:8080"), "Caption search API URL")
	owner := flag.String("owner", client.GetEnvOrDefault("CAPTION_OWNER", ""), "Owner identity (email)")
	flag.Parse()

	files := flag.Args()
	if *owner == "" || len(files) == 0 {
		fmt.Println("usage: demo -owner you@example.com [-url http://host:8080] file.ts [file2.m2ts ...]")
		os.Exit(2)
	}

	m := tui.NewModel(client.NewClient(*apiURL, *owner), files)
	program := tea.NewProgram(m)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
