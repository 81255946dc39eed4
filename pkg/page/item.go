package page

// Offset of the one-byte validity tag within a DataItem's raw bytes
// ([valid:1][size:2][data:size]). Recovery needs only this byte to
// tombstone an item undone out from under an aborted transaction; the
// full DataItem format lives in pkg/dm.
const ItemValidOffset = 0

// ItemValid reports whether the DataItem whose raw bytes begin at offset
// within data is live (valid=0) rather than tombstoned (valid=1).
func ItemValid(data []byte, offset uint16) bool {
	return data[int(offset)+ItemValidOffset] == 0
}

// TombstoneItem marks the DataItem at offset invalid in place, without
// touching its size or payload bytes.
func TombstoneItem(data []byte, offset uint16) {
	data[int(offset)+ItemValidOffset] = 1
}
