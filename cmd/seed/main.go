package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mstasiak/storefront-backend/config"
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	"github.com/mstasiak/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Imports the catalog from an XLSX sheet with columns:
// title | description | price | active
// Each imported product gets a default variation so it is purchasable.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	catalogService := service.NewCatalogService(productRepo)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range products {
		if err := catalogService.CreateProduct(&products[i]); err != nil {
			log.Printf("Failed to import %q: %v", products[i].Title, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", imported)
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet has no data rows")
	}

	var products []model.Product
	for i, row := range rows[1:] { // skip header
		if len(row) < 3 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		price, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil {
			log.Printf("Row %d: invalid price %q, skipping", i+2, row[2])
			continue
		}

		active := true
		if len(row) > 3 && row[3] != "" {
			active, err = strconv.ParseBool(strings.TrimSpace(row[3]))
			if err != nil {
				active = true
			}
		}

		products = append(products, model.Product{
			Title:       strings.TrimSpace(row[0]),
			Description: strings.TrimSpace(row[1]),
			Price:       price,
			Active:      active,
		})
	}

	return products, nil
}
