package common

import "fmt"

var (
	// Search index keys
	searchDoc   string = "search:doc:%s" // documentId
	searchIndex string = "search:index"
)

var Keys = &redisKeys{}

type redisKeys struct{}

// SearchDoc is the hash holding one indexed document
func (rk *redisKeys) SearchDoc(documentId string) string {
	return fmt.Sprintf(searchDoc, documentId)
}

// SearchIndex is the set of all indexed document ids
func (rk *redisKeys) SearchIndex() string {
	return searchIndex
}
