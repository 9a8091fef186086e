/*
Package source locates, enumerates and parses the data files that feed the
overlay engine. Files are read from any gocloud.dev blob bucket (a local
directory via fileblob, an in-memory bucket in tests, or cloud storage).

A bucket is laid out by filename convention:

	gamedata.yaml                          live game data (file version 0)
	tanks.<N>.csv                          classification overrides, N >= 1
	properties/<FileID>.<Author>.<N>.csv   property overrides, N >= 1

Other objects are ignored.

The live game data translates into synthetic edits of file version 0: one
unversioned classification edit per tank, and one property per entry of its
properties map, keyed "<name>@game".

Classification files are comma-separated with a header row. The tank column is
mandatory; version, tombstone, country, tier, class, category and image are
optional. An empty cell leaves the field unspecified:

	tank,version,tier,class
	R04_T-34,,5,medium
	R04_T-34,100,6,

Property files start with optional directive lines, followed by a header row
with the tank column, optional version and tombstone columns, and one or more
value columns:

	# inherits: Speed/Base
	# description en: Reverse speed in km/h
	tank,version,value
	R04_T-34,,20

A file with a single value column defines the property "<FileID>@<Author>";
a file with several defines "<FileID>/<column>@<Author>" for each of them, and
its directives may name the column they apply to:

	# inherits Forward: Speed/Base
	# description Forward en: Forward speed in km/h

A tombstone row retracts every value column of the file and must leave the
value cells empty.

Malformed files are rejected with a *SyntaxError; the engine never sees them.
*/
package source
