package model

// ServiceType is the classification key used for grouping and filtering.
type ServiceType string

const (
	TypePostgreSQL    ServiceType = "postgresql"
	TypeMySQL         ServiceType = "mysql"
	TypeMariaDB       ServiceType = "mariadb"
	TypeMSSQL         ServiceType = "mssql"
	TypeOracle        ServiceType = "oracle"
	TypeDB2           ServiceType = "db2"
	TypeFirebird      ServiceType = "firebird"
	TypeSQLite        ServiceType = "sqlite"
	TypeMongoDB       ServiceType = "mongodb"
	TypeCassandra     ServiceType = "cassandra"
	TypeCouchDB       ServiceType = "couchdb"
	TypeNeo4j         ServiceType = "neo4j"
	TypeRedis         ServiceType = "redis"
	TypeMemcached     ServiceType = "memcached"
	TypeElasticsearch ServiceType = "elasticsearch"
	TypeInfluxDB      ServiceType = "influxdb"
	TypeRabbitMQ      ServiceType = "rabbitmq"

	// TypeOther is the fallback for anything unrecognized.
	TypeOther ServiceType = "other"
)

// Category is a coarser grouping over service types.
type Category string

const (
	CategorySQL     Category = "sql_databases"
	CategoryNoSQL   Category = "nosql_databases"
	CategoryCache   Category = "cache_memory"
	CategorySearch  Category = "search_analytics"
	CategoryBrokers Category = "message_brokers"
	CategoryOther   Category = "other_services"
)

// TypeInfo holds presentation metadata for a service type.
type TypeInfo struct {
	Type     ServiceType
	Name     string
	Icon     string
	Color    string
	Category Category
}

// CategoryInfo holds presentation metadata for a category.
type CategoryInfo struct {
	Category    Category
	Name        string
	Description string
	Icon        string
	Color       string
}

var typeInfo = map[ServiceType]TypeInfo{
	TypeMSSQL:         {TypeMSSQL, "Microsoft SQL Server", "▤", "#0078D4", CategorySQL},
	TypePostgreSQL:    {TypePostgreSQL, "PostgreSQL", "▤", "#336791", CategorySQL},
	TypeMySQL:         {TypeMySQL, "MySQL", "▤", "#4479A1", CategorySQL},
	TypeMariaDB:       {TypeMariaDB, "MariaDB", "▤", "#C49A6C", CategorySQL},
	TypeOracle:        {TypeOracle, "Oracle Database", "▤", "#F80000", CategorySQL},
	TypeDB2:           {TypeDB2, "IBM DB2", "▤", "#054ADA", CategorySQL},
	TypeFirebird:      {TypeFirebird, "Firebird", "▤", "#FF6600", CategorySQL},
	TypeSQLite:        {TypeSQLite, "SQLite", "▤", "#3A88C8", CategorySQL},
	TypeMongoDB:       {TypeMongoDB, "MongoDB", "◈", "#47A248", CategoryNoSQL},
	TypeCassandra:     {TypeCassandra, "Apache Cassandra", "◈", "#1287B1", CategoryNoSQL},
	TypeCouchDB:       {TypeCouchDB, "CouchDB", "◈", "#E42528", CategoryNoSQL},
	TypeNeo4j:         {TypeNeo4j, "Neo4j", "◈", "#008CC1", CategoryNoSQL},
	TypeRedis:         {TypeRedis, "Redis", "ϟ", "#DC382D", CategoryCache},
	TypeMemcached:     {TypeMemcached, "Memcached", "ϟ", "#5B8DD6", CategoryCache},
	TypeElasticsearch: {TypeElasticsearch, "Elasticsearch", "⌕", "#FEC514", CategorySearch},
	TypeInfluxDB:      {TypeInfluxDB, "InfluxDB", "∿", "#22ADF6", CategorySearch},
	TypeRabbitMQ:      {TypeRabbitMQ, "RabbitMQ", "✉", "#FF6600", CategoryBrokers},
	TypeOther:         {TypeOther, "Other", "⚙", "#666666", CategoryOther},
}

var categoryInfo = map[Category]CategoryInfo{
	CategorySQL:     {CategorySQL, "SQL Databases", "Relational database management systems", "▤", "#0078D4"},
	CategoryNoSQL:   {CategoryNoSQL, "NoSQL Databases", "Document, graph, and column-family databases", "◈", "#107C10"},
	CategoryCache:   {CategoryCache, "Cache & In-Memory", "High-performance caching and in-memory stores", "ϟ", "#FF8C00"},
	CategorySearch:  {CategorySearch, "Search & Analytics", "Search engines and time-series databases", "⌕", "#881798"},
	CategoryBrokers: {CategoryBrokers, "Message Brokers", "Message queuing and streaming services", "✉", "#E81123"},
	CategoryOther:   {CategoryOther, "Other Services", "Services without a known classification", "⚙", "#666666"},
}

// AllTypes lists the known types in a fixed order, fallback last.
var AllTypes = []ServiceType{
	TypeMSSQL, TypePostgreSQL, TypeMySQL, TypeMariaDB, TypeOracle, TypeDB2, TypeFirebird, TypeSQLite,
	TypeMongoDB, TypeCassandra, TypeCouchDB, TypeNeo4j,
	TypeRedis, TypeMemcached,
	TypeElasticsearch, TypeInfluxDB,
	TypeRabbitMQ,
	TypeOther,
}

// AllCategories lists categories in a fixed order, fallback last.
var AllCategories = []Category{
	CategorySQL, CategoryNoSQL, CategoryCache, CategorySearch, CategoryBrokers, CategoryOther,
}

// Known reports whether t is a member of the closed type set.
func (t ServiceType) Known() bool {
	_, ok := typeInfo[t]
	return ok
}

// Info returns metadata for t; unknown types get the fallback entry.
func (t ServiceType) Info() TypeInfo {
	if info, ok := typeInfo[t]; ok {
		return info
	}
	return typeInfo[TypeOther]
}

// Category returns the category t belongs to.
func (t ServiceType) Category() Category {
	return t.Info().Category
}

// Info returns metadata for c; unknown categories get the fallback entry.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryInfo[c]; ok {
		return info
	}
	return categoryInfo[CategoryOther]
}
