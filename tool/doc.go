/*
Package tool describes the functions an agent carries around.

A Definition pairs a Go function with the name and description a model would
see. Agents keep their definitions as plain data: they are validated when the
agent is built and can be listed or rendered as a JSON schema, but they are
never advertised to the completion API and never called by the agent itself.
Anything that wants to act on them does so through Agent.Tools.

	search := tool.Must(func(query string, limit int) []string { ... },
		tool.Name("search"),
		tool.Description("Search the knowledge base"),
		tool.Parameters("query", "limit"),
	)

Schema derives an object schema from the function signature. Parameters are
named param0, param1 and so on unless Parameters supplies better names; a
leading context.Context argument is left out.
*/
package tool
