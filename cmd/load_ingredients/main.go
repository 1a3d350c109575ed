package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"github.com/feniks1632/foodgram-project-react/config"
	"github.com/feniks1632/foodgram-project-react/internal/database"
	"github.com/feniks1632/foodgram-project-react/internal/models"
)

// Seeds the tag and ingredient catalogs. The CSV holds one
// "name,measurement_unit" row per ingredient; existing rows are kept.
func main() {
	csvPath := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Loading tags")
	tags := []models.Tag{
		{Name: "Завтрак", Slug: "breakfast", Color: "#FFFC66"},
		{Name: "Обед", Slug: "lunch", Color: "#54E709"},
		{Name: "Ужин", Slug: "dinner", Color: "#E4007C"},
	}
	for _, tag := range tags {
		if err := db.Where(models.Tag{Slug: tag.Slug}).FirstOrCreate(&tag).Error; err != nil {
			log.Fatalf("Failed to create tag %s: %v", tag.Slug, err)
		}
	}

	log.Println("Loading ingredients")
	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *csvPath, err)
	}
	defer file.Close()

	count := 0
	reader := csv.NewReader(file)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read CSV: %v", err)
		}
		if len(row) != 2 {
			log.Fatalf("Malformed row %v: expected name,measurement_unit", row)
		}

		ingredient := models.Ingredient{Name: row[0], MeasurementUnit: row[1]}
		err = db.Where(models.Ingredient{Name: ingredient.Name, MeasurementUnit: ingredient.MeasurementUnit}).
			FirstOrCreate(&ingredient).Error
		if err != nil {
			log.Fatalf("Failed to create ingredient %s: %v", ingredient.Name, err)
		}
		count++
	}

	log.Printf("Loaded %d ingredients", count)
}
