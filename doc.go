/*
Package ocfmeta parses the header and block layout of Avro object
container files, so that row payloads can later be decoded block by
block and in parallel.

Data Structure Documentation

File

A container file starts with a header, followed by a series of
data blocks.

    File layout:
    +--------+---------+---------+---------+
    | header | block 1 |   ...   | block n |
    +--------+---------+---------+---------+

    Header:
    +-----------------+--------------+------------------------+
    | magic "Obj\x01" | metadata map | sync marker (16 bytes) |
    +-----------------+--------------+------------------------+

    Metadata map:
    +----------------+-------------------+---------------------+-------+----------------+
    | count (varint) | key 1 (len+bytes) | value 1 (len+bytes) |  ...  | 0 (end marker) |
    +----------------+-------------------+---------------------+-------+----------------+

All integers are zig-zag encoded varints. A map may contain several
count-prefixed chunks, a negative count is followed by the chunk size
in bytes. The keys "avro.codec" and "avro.schema" carry the compression
codec and the JSON schema.

Block

    Block layout:
    +-----------------------+-----------------------+------------------+------------------------+
    | object count (varint) | payload size (varint) | payload (varlen) | sync marker (16 bytes) |
    +-----------------------+-----------------------+------------------+------------------------+

Schema

Schemas are parsed into a flat, pre-order list of entries, each one
pointing at its parent by index. Records own their fields, unions own
their branches:

    {"type":"record","name":"R","fields":[{"name":"f","type":["null","int"]}]}

    0: record "R"   parent -
    1: union  "f"   parent 0
    2: null         parent 1
    3: int          parent 1
*/
package ocfmeta
