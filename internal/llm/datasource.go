package llm

// SearchDataSource binds an Azure AI Search index to a chat completion so the
// answer is grounded in the indexed documents.
type SearchDataSource struct {
	Endpoint            string
	IndexName           string
	APIKey              string
	EmbeddingDeployment string
}

// Payload renders the data_sources entry in the shape the completion service
// expects. Query type is always vector.
func (d SearchDataSource) Payload() map[string]any {
	return map[string]any{
		"type": "azure_search",
		"parameters": map[string]any{
			"endpoint":   d.Endpoint,
			"index_name": d.IndexName,
			"authentication": map[string]any{
				"type": "api_key",
				"key":  d.APIKey,
			},
			"query_type": "vector",
			"embedding_dependency": map[string]any{
				"type":            "deployment_name",
				"deployment_name": d.EmbeddingDeployment,
			},
		},
	}
}

// Configured reports whether enough fields are set to issue a retrieval request.
func (d SearchDataSource) Configured() bool {
	return d.Endpoint != "" && d.IndexName != "" && d.APIKey != ""
}
