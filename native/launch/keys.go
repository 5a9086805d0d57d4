package launch

import "fmt"

const keyPrefix = "launch"

func globalKey() []byte {
	return []byte(keyPrefix + "/global")
}

func launchKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s/record/%d", keyPrefix, id))
}

func metadataKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s/meta/%d", keyPrefix, id))
}

func actionRecordKey(id uint64, addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s/action/%d/%x", keyPrefix, id, addr))
}

func tokenBalanceKey(id uint64, addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s/token/%d/%x", keyPrefix, id, addr))
}
