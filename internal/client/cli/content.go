package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/avetrovs/vitrine/internal/docstore"
)

func printDocument(doc docstore.Document) {
	blob, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		printlnFn(fmt.Sprintf("%v", doc))
		return
	}
	printlnFn(string(blob))
}

// summaryLine renders a one-line listing entry: the id followed by the
// document's scalar fields in stable order.
func summaryLine(doc docstore.Document) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		if k == docstore.FieldID || k == docstore.FieldCreatedAt || k == docstore.FieldUpdatedAt {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := doc.ID()
	for _, k := range keys {
		s += fmt.Sprintf(" %s=%v", k, doc[k])
	}
	return s
}

// List prints every document in the named collection.
func (a *App) List(ctx context.Context, args []string) error {
	collection := args[0]

	docs, err := a.content.List(ctx, collection)
	if err != nil {
		log.Printf("Error listing %s: %s", collection, err.Error())
		return err
	}

	if len(docs) == 0 {
		printlnFn(fmt.Sprintf("No documents in %s", collection))
		return nil
	}
	for _, doc := range docs {
		printlnFn(summaryLine(doc))
	}
	return nil
}

// Show prints a single document in full.
func (a *App) Show(ctx context.Context, args []string) error {
	collection, id := args[0], args[1]

	doc, ok, err := a.content.Get(ctx, collection, id)
	if err != nil {
		log.Printf("Error loading document: %s", err.Error())
		return err
	}
	if !ok {
		printlnFn(fmt.Sprintf("No document %s in %s", id, collection))
		return nil
	}

	printDocument(doc)
	return nil
}

// Add prompts for fields and inserts a new document into the collection.
func (a *App) Add(ctx context.Context, args []string) error {
	collection := args[0]

	fields, err := GetFields(a.reader, os.Stdout)
	if err != nil {
		return err
	}

	doc, err := a.content.Add(ctx, collection, fields)
	if err != nil {
		log.Printf("Error adding document: %s", err.Error())
		return err
	}

	printlnFn("Created", doc.ID())
	return nil
}

// Edit prompts for fields and applies them as a patch to the identified
// document. Fields left out keep their current values.
func (a *App) Edit(ctx context.Context, args []string) error {
	collection, id := args[0], args[1]

	patch, err := GetFields(a.reader, os.Stdout)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		printlnFn("Nothing to change")
		return nil
	}

	doc, ok, err := a.content.Edit(ctx, collection, id, patch)
	if err != nil {
		log.Printf("Error updating document: %s", err.Error())
		return err
	}
	if !ok {
		printlnFn(fmt.Sprintf("No document %s in %s", id, collection))
		return nil
	}

	printDocument(doc)
	return nil
}

// Delete removes a document by id.
func (a *App) Delete(ctx context.Context, args []string) error {
	collection, id := args[0], args[1]

	removed, err := a.content.Delete(ctx, collection, id)
	if err != nil {
		log.Printf("Error deleting document: %s", err.Error())
		return err
	}
	if !removed {
		printlnFn(fmt.Sprintf("No document %s in %s", id, collection))
		return nil
	}

	printlnFn("Deleted", id)
	return nil
}

// Seed loads the catalog's seed documents into collections that are still
// empty and reports what was inserted.
func (a *App) Seed(ctx context.Context) error {
	inserted, err := a.content.Seed(ctx)
	if err != nil {
		log.Printf("Error seeding: %s", err.Error())
		return err
	}

	if len(inserted) == 0 {
		printlnFn("Nothing to seed, all collections already have data")
		return nil
	}

	names := make([]string, 0, len(inserted))
	for name := range inserted {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printlnFn(fmt.Sprintf("Seeded %s with %d documents", name, inserted[name]))
	}
	return nil
}
