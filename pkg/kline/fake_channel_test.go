package kline

import (
	"github.com/kjdev/kwp2000tool/internal/testchannel"
)

// newFakeChannel wraps the shared in-memory test fixture behind the
// kline.Channel interface.
func newFakeChannel(replies ...byte) *testchannel.Channel {
	return testchannel.New(replies)
}

var _ Channel = (*testchannel.Channel)(nil)
