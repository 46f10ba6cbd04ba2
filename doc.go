/*
Package hgsave reads and writes compressed save files whose body is a
JSON document with obfuscated object keys.

Loading a save decompresses the container, decodes the text and renames
short keys to long ones (see the keymap and tree packages). Saving runs
the same steps in reverse:

    doc, err := hgsave.Unpack(raw, table, false)
    raw, err = hgsave.Pack(doc, table, false)

Data Structure Documentation

Container

A container is a series of independently compressed blocks, terminating
exactly at the end of the stream. There is no container header, index or
footer. Writers split the payload into chunks of 0x80000 bytes; only the
last block may be shorter.

    Container layout:
    +---------+---------+---------+
    | block 1 |   ...   | block n |
    +---------+---------+---------+

Block

A block is a 16-byte header followed by an LZ4 block-format payload
without a size prefix. All integers are little-endian.

    Block layout:
    +------------------------+---------------------------+-----------------------------+---------------------+---------------------------+
    | magic 0xfeeda1e5 (4 B) | compressed length (4 B)   | uncompressed length (4 B)   | reserved, zero (4B) | payload (compressed len)  |
    +------------------------+---------------------------+-----------------------------+---------------------+---------------------------+

Payload

The concatenated block payloads hold ISO-8859-15 encoded JSON text,
terminated by one or more NUL bytes.

Input that does not start with the magic is passed through Decompress
unchanged, so plain text saves can be loaded by the same code path. Use
Reader or ScanBlocks to reject such input instead.
*/
package hgsave
