package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Amund211/gacharecord/internal/adapters/recordprovider"
	"github.com/Amund211/gacharecord/internal/app"
	"github.com/Amund211/gacharecord/internal/domain"
)

// Fetches a single category for a record page URL and prints the parsed pulls.
// Usage: get-records <record page URL> [card pool type]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("No record page URL provided")
	}

	descriptor, err := app.ParseRecordURL(os.Args[1])
	if err != nil {
		log.Fatalf("Failed parsing record page URL: %v", err)
	}

	category := domain.CategoryFeaturedResonator
	if len(os.Args) >= 3 {
		parsed, err := strconv.Atoi(os.Args[2])
		if err != nil || !domain.Category(parsed).IsKnown() {
			log.Fatalf("Invalid card pool type: %s", os.Args[2])
		}
		category = domain.Category(parsed)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	provider, err := recordprovider.NewAkiRecordProvider(httpClient, time.Now, time.After)
	if err != nil {
		log.Fatalf("Failed creating record provider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := provider.GetRecords(ctx, descriptor, category)
	if err != nil {
		log.Fatalf("Failed fetching records: %v", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Fatalf("Failed marshalling records: %v", err)
	}

	fmt.Println(string(data))
	fmt.Printf("%d pulls for player %s in %s\n", len(records), descriptor.PlayerID, category.DisplayName())
}
