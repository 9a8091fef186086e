/*
Package neo4jexport writes a resolved snapshot into a Neo4j database as a graph,
for inspecting resolved data and property inheritance with the Neo4j browser.

The exported graph consists of:

	(:Snapshot {version, hash, warnings})
	(:Tank {key, country, tier, class, category, image})
	(:Property {key, `description.<lang>`...})
	(:Tank)-[:HAS {value}]->(:Property)
	(:Property)-[:INHERITS]->(:Property)

Each call to Write replaces the previously exported graph in a single write
transaction, so readers never observe a mix of two snapshots.
*/
package neo4jexport
