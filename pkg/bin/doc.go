// Package bin centralizes quill's fixed-width binary encoders.
//
// Every on-disk integer and length-prefixed string in quill — page
// headers, data-item headers, log records, B+ tree nodes, catalog
// records — goes through this package. Encoding is big-endian
// throughout; nothing outside this package may assume a byte order.
package bin
