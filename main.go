package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Set properties of the predefined Logger, including the log entry
	// prefix and a flag to disable printing the time, source file, and
	// line number.
	log.SetPrefix("jd/macro-tracker-go-api: ")
	log.SetFlags(0)

	// .env is optional — deployed environments set real env vars.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using system env")
	}

	pool := getDBPool()
	defer pool.Close()
	h := newHandler(pool)

	fmt.Println("Starting gin app...")

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "localhost:3000"
	}
	router.Run(addr)
}
