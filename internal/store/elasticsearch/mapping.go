package elasticsearch

// indexMapping maps every filterable document field as a keyword so that
// term, terms and case-insensitive wildcard queries match whole values.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "dynamic": false,
    "properties": {
      "id":          { "type": "keyword" },
      "title":       { "type": "keyword" },
      "description": { "type": "keyword", "ignore_above": 8191 },
      "isActive":    { "type": "boolean" },
      "isAvailable": { "type": "boolean" },
      "price":       { "type": "double" },
      "salePrice":   { "type": "double" },
      "style":       { "type": "keyword" },
      "type":        { "type": "keyword" },
      "shape":       { "type": "keyword" },
      "metal":       { "type": "keyword" },
      "karat":       { "type": "keyword" },
      "carat":       { "type": "double" },
      "color":       { "type": "keyword" },
      "clarity":     { "type": "keyword" },
      "cut":         { "type": "keyword" },
      "createdAt":   { "type": "date" },
      "updatedAt":   { "type": "date" }
    }
  }
}`
