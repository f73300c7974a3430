// Package main OmniQ API Server
//
//	@title			OmniQ API
//	@version		1.0
//	@description	A backend for conversational document Q&A with citations, document storage, and stream relay
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"log"

	"github.com/joho/godotenv"

	_ "omniq/docs" // swagger spec registration
	"omniq/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	log.Println("Starting OmniQ Server...")
	srv := server.NewServer()
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
