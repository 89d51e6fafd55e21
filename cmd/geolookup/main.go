// geolookup resolves IP addresses against a local MaxMind city database and
// prints one geolocation record per input IP.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jletteboer/P4DS/src/geo"
)

func main() {
	godotenv.Load()

	dbPath := flag.String("db", geo.DefaultDatabasePath(), "Path to the GeoLite2 city database")
	asJSON := flag.Bool("json", false, "Print records as JSON instead of plain text")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: geolookup [-db path] [-json] ip [ip...]")
		os.Exit(2)
	}

	resolver, err := geo.OpenResolver(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer resolver.Close()

	failed := false
	for _, ip := range flag.Args() {
		rec, err := resolver.Resolve(ip)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			failed = true
			continue
		}
		if *asJSON {
			b, _ := json.Marshal(rec)
			fmt.Println(string(b))
			continue
		}
		fmt.Printf("%s: %s (%s) region=%s city=%s lat=%g lon=%g\n",
			rec.IP, rec.CountryLong, rec.CountryShort, rec.Region, rec.City, rec.Latitude, rec.Longitude)
	}
	if failed {
		os.Exit(1)
	}
}
