package catalog

import (
	"strings"

	"svcboard/internal/model"
)

type pattern struct {
	typ     model.ServiceType
	needles []string
}

// Checked in order; the first match wins.
var patterns = []pattern{
	{model.TypePostgreSQL, []string{"postgresql", "postgres"}},
	{model.TypeMariaDB, []string{"mariadb"}},
	{model.TypeMySQL, []string{"mysql"}},
	{model.TypeMSSQL, []string{
		"mssql", "sqlserver", "mssqlserver",
		"sqlagent", "sqlbrowser", "sqlwriter",
		"sqlceip", "sqltelemetry", "msdtsserver",
		"msftesql", "reportserver",
	}},
	{model.TypeOracle, []string{"oracle"}},
	{model.TypeDB2, []string{"db2"}},
	{model.TypeFirebird, []string{"firebird"}},
	{model.TypeSQLite, []string{"sqlite"}},
	{model.TypeMongoDB, []string{"mongodb", "mongo"}},
	{model.TypeCassandra, []string{"cassandra"}},
	{model.TypeCouchDB, []string{"couchdb"}},
	{model.TypeNeo4j, []string{"neo4j"}},
	{model.TypeRedis, []string{"redis"}},
	{model.TypeMemcached, []string{"memcached"}},
	{model.TypeElasticsearch, []string{"elasticsearch", "elastic"}},
	{model.TypeInfluxDB, []string{"influxdb", "influx"}},
	{model.TypeRabbitMQ, []string{"rabbitmq"}},
}

// Detect guesses a service type from a service name. ok is false when no
// known pattern matches.
func Detect(name string) (model.ServiceType, bool) {
	lower := strings.ToLower(name)
	if lower == "" {
		return "", false
	}
	for _, p := range patterns {
		for _, needle := range p.needles {
			if strings.Contains(lower, needle) {
				return p.typ, true
			}
		}
	}
	return "", false
}

// Classify returns the classification key of item. It never fails: known
// types pass through, unknown ones are detected from the identifier and
// display name, and the rest fall back to model.TypeOther.
func Classify(item model.Item) model.ServiceType {
	if item.Type != model.TypeOther && item.Type.Known() {
		return item.Type
	}
	if t, ok := Detect(item.ID); ok {
		return t
	}
	if t, ok := Detect(item.DisplayName); ok {
		return t
	}
	return model.TypeOther
}
