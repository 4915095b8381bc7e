package reports

// SchemaContext describes reports_master for SQL-generation prompts. Kept as
// prose rather than information_schema introspection so the wording stays
// tuned for the model.
const SchemaContext = `TABLE: reports_master
Stores keyword ranking reports. Each row = one keyword for one client in one month/year.

COLUMNS:
FILTERS: client_name (TEXT, lowercase), year (INTEGER), month (TEXT, capitalized full name), month_id (INTEGER 1-12)
METRICS: keyword (TEXT), initial_ranking (INTEGER), current_ranking (INTEGER), change (INTEGER: positive = improved, negative = declined),
         search_volume (INTEGER), map_ranking_gbp (INTEGER), location (TEXT), url (TEXT),
         difficulty (INTEGER 0-100), search_intent (TEXT: 'Informational', 'Commercial', 'Transactional')

NOTES:
- client_name is stored lowercase ('efg', not 'EFG')
- month is the full capitalized name ('December', not 'Dec')
- year is an integer (2025, not '2025')
- rankings: lower number = better (1 is best)
- change > 0 = improved, change < 0 = declined
- indexed: client_name, year, month, keyword`

// QueryExamples are few-shot question/SQL pairs included in generation
// prompts.
const QueryExamples = `Question: "Show me top 5 keywords with highest search volume for client efg in December 2025"
SQL: SELECT keyword, search_volume, current_ranking, location
     FROM reports_master
     WHERE client_name = 'efg' AND year = 2025 AND month = 'December'
     ORDER BY search_volume DESC
     LIMIT 5

Question: "How many keywords are tracked for efg in December 2025?"
SQL: SELECT COUNT(*) AS total_keywords
     FROM reports_master
     WHERE client_name = 'efg' AND year = 2025 AND month = 'December'

Question: "Which keywords improved the most for abc in March 2025?"
SQL: SELECT keyword, initial_ranking, current_ranking, change
     FROM reports_master
     WHERE client_name = 'abc' AND year = 2025 AND month = 'March'
     ORDER BY change DESC
     LIMIT 10

Question: "Show keywords with search intent 'Commercial' for efg in December 2025"
SQL: SELECT keyword, search_volume, current_ranking, url
     FROM reports_master
     WHERE client_name = 'efg' AND year = 2025 AND month = 'December' AND search_intent = 'Commercial'`
