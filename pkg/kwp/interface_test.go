package kwp

import (
	"testing"

	"github.com/kjdev/kwp2000tool/internal/testchannel"
	"github.com/stretchr/testify/require"
)

func TestNextResponseSkipsPendingForOutstandingService(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respNegative), []byte{byte(svcSecurityAccess), byte(ErrResponsePending)})...)
	ch.QueueReply(frameBytes(t, byte(respSecurityAccess), []byte{0x01})...)

	iface := NewInterface(ch, nil)
	require.NoError(t, iface.Send(RequestSecuritySeed{Level: 1}))

	resp, err := iface.NextResponse()
	require.NoError(t, err)
	_, ok := resp.(SecurityAccessGranted)
	require.True(t, ok)
}

func TestNextResponseRejectsPendingForOtherService(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respNegative), []byte{byte(svcRequestDownload), byte(ErrResponsePending)})...)

	iface := NewInterface(ch, nil)
	require.NoError(t, iface.Send(RequestSecuritySeed{Level: 1}))

	_, err := iface.NextResponse()
	require.ErrorIs(t, err, ErrUnexpectedPending)
}
