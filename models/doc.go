// Package models is the catalog of chat models an agent can be configured with.
//
// The catalog is a JSON document keyed by provider and then by model name:
//
//	{
//	  "openrouter": {
//	    "claude-3-opus": {
//	      "id": "anthropic/claude-3-opus",
//	      "category": "GENERAL",
//	      "description": "Anthropic's most capable Claude 3 model",
//	      "max_tokens": 200000
//	    }
//	  }
//	}
//
// The optional id is the identifier sent to the provider; when it is absent the
// model name itself is used. A default catalog is embedded in the binary and
// Load reads a replacement from disk. Documents keep their declaration order,
// so listings come out in the order the file was written.
package models
