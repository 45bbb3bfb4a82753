package main

import (
	"log"
)

// @title Formstore API
// @version 1.0
// @description Local metadata store for downloaded form definitions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
