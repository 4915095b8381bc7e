package producer

import (
	"fmt"
	"math/rand"
	"time"
)

// reportRecord is the report file row layout. It matches what the loader
// expects to decode on the other side.
type reportRecord struct {
	ClientName     string `parquet:"client_name"`
	Year           int32  `parquet:"year"`
	Month          string `parquet:"month"`
	MonthID        int32  `parquet:"month_id"`
	Keyword        string `parquet:"keyword"`
	InitialRanking *int64 `parquet:"initial_ranking,optional"`
	CurrentRanking *int64 `parquet:"current_ranking,optional"`
	Change         *int64 `parquet:"change,optional"`
	SearchVolume   *int64 `parquet:"search_volume,optional"`
	MapRankingGBP  *int64 `parquet:"map_ranking_gbp,optional"`
	Location       string `parquet:"location,optional"`
	URL            string `parquet:"url,optional"`
	Difficulty     *int64 `parquet:"difficulty,optional"`
	SearchIntent   string `parquet:"search_intent,optional"`
}

var keywordStems = []string{
	"seo audit", "local seo", "link building", "keyword research",
	"content marketing", "technical seo", "backlink analysis",
	"rank tracker", "on page seo", "google business profile",
	"site speed optimization", "schema markup", "competitor analysis",
}

var locations = []string{"Austin", "Denver", "Seattle", "Chicago", "Miami", "Portland"}

var intents = []string{"Informational", "Commercial", "Transactional"}

type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// MonthlyReport produces one client-month of keyword rows. Rankings move
// plausibly: current ranking is initial plus a bounded shift, and change is
// their signed difference.
func (g *Generator) MonthlyReport(client string, year, monthID, keywords int) []reportRecord {
	month := time.Month(monthID).String()
	records := make([]reportRecord, 0, keywords)
	for i := 0; i < keywords; i++ {
		stem := keywordStems[g.rnd.Intn(len(keywordStems))]
		location := locations[g.rnd.Intn(len(locations))]
		keyword := fmt.Sprintf("%s %s", stem, g.variant())

		initial := int64(g.rnd.Intn(80) + 1)
		shift := int64(g.rnd.Intn(21) - 10)
		current := initial - shift
		if current < 1 {
			current = 1
		}
		change := initial - current
		volume := int64(g.rnd.Intn(20000) + 100)
		mapRank := int64(g.rnd.Intn(20) + 1)
		difficulty := int64(g.rnd.Intn(101))

		records = append(records, reportRecord{
			ClientName:     client,
			Year:           int32(year),
			Month:          month,
			MonthID:        int32(monthID),
			Keyword:        keyword,
			InitialRanking: &initial,
			CurrentRanking: &current,
			Change:         &change,
			SearchVolume:   &volume,
			MapRankingGBP:  &mapRank,
			Location:       location,
			URL:            fmt.Sprintf("https://%s.example.com/%s", client, slug(stem)),
			Difficulty:     &difficulty,
			SearchIntent:   intents[g.rnd.Intn(len(intents))],
		})
	}
	return records
}

func (g *Generator) variant() string {
	suffixes := []string{"services", "agency", "near me", "pricing", "tools", "guide"}
	return suffixes[g.rnd.Intn(len(suffixes))]
}

func slug(stem string) string {
	out := make([]rune, 0, len(stem))
	for _, r := range stem {
		if r == ' ' {
			out = append(out, '-')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
