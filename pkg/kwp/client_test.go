package kwp

import (
	"testing"

	"github.com/kjdev/kwp2000tool/internal/testchannel"
	"github.com/stretchr/testify/require"
)

func frameBytes(t *testing.T, service byte, payload []byte) []byte {
	t.Helper()
	b, err := Encode(Frame{Service: service, Payload: payload})
	require.NoError(t, err)
	return b
}

func newTestClient(ch *testchannel.Channel) *Client {
	return NewClient(ch, nil)
}

func TestSwitchModeProgramming(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respStartDiagnosticSession), []byte{byte(ModeProgramming)})...)

	c := newTestClient(ch)
	err := c.SwitchMode(ModeProgramming, nil)
	require.NoError(t, err)
	require.Equal(t, ModeProgramming, c.Mode())
	require.False(t, c.Secured())
}

func TestSwitchModeUnexpectedMode(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respStartDiagnosticSession), []byte{byte(ModeOBD)})...)

	c := newTestClient(ch)
	err := c.SwitchMode(ModeProgramming, nil)
	require.ErrorIs(t, err, ErrUnexpectedMode)
}

func TestSecurityAccessLockoutBypass(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respDynamicallyDefineLocalIdentifier), []byte{0xF0})...)
	ch.QueueReply(frameBytes(t, byte(respDynamicallyDefineLocalIdentifier), []byte{0xF0})...)
	ch.QueueReply(frameBytes(t, byte(respWriteDataByLocalIdentifier), []byte{0xF0})...)
	ch.QueueReply(frameBytes(t, byte(respSecurityAccess), []byte{0x01})...)

	c := newTestClient(ch)
	err := c.SecurityAccessLockoutBypass()
	require.NoError(t, err)
	require.True(t, c.Secured())

	wantSent := append(append(append(
		frameBytes(t, byte(svcDynamicallyDefineLocalIdentifier), []byte{byte(ClearDynamicallyDefinedLocalIdentifier), 0xF0}),
		frameBytes(t, byte(svcDynamicallyDefineLocalIdentifier), append([]byte{byte(DefineByMemoryAddress), 0xF0, 2}, encodeAddress24(lockoutCounterAddress)...))...),
		frameBytes(t, byte(svcWriteDataByLocalIdentifier), []byte{0xF0, 0, 0})...),
		frameBytes(t, byte(svcSecurityAccess), []byte{0x01})...)

	require.Equal(t, wantSent, ch.Written.Bytes())
}

func TestDownloadLongRepeatSingleBlock(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respRequestDownload), []byte{128})...)
	ch.QueueReply(frameBytes(t, byte(respTransferData), nil)...)

	c := newTestClient(ch)
	c.mode = ModeProgramming
	c.security = SecurityState{Granted: true, Level: 1}

	data := make([]byte, 600)
	for i := range data {
		data[i] = 0xAA
	}

	err := c.Download(0x100000, data)
	require.NoError(t, err)
}

func TestUploadThreeBlocks(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respRequestUpload), []byte{16})...)
	ch.QueueReply(frameBytes(t, byte(respTransferData), make([]byte, 16))...)
	ch.QueueReply(frameBytes(t, byte(respTransferData), make([]byte, 16))...)
	ch.QueueReply(frameBytes(t, byte(respTransferData), make([]byte, 8))...)
	ch.QueueReply(frameBytes(t, byte(respTransferData), nil)...)

	c := newTestClient(ch)
	c.security = SecurityState{Granted: true, Level: 1}

	out, err := c.Upload(0x800000, 40)
	require.NoError(t, err)
	require.Len(t, out, 40)

	requestTransfer, err := Encode(RequestDataTransfer{
		Type: TransferUpload, Address: 0x800000, Size: 40,
		Compression: CompressionUncompressed, Encryption: EncryptionUnencrypted,
	}.toFrame())
	require.NoError(t, err)

	requestData := frameBytes(t, byte(svcTransferData), nil)
	want := append([]byte(nil), requestTransfer...)
	for i := 0; i < 4; i++ {
		want = append(want, requestData...)
	}
	require.Equal(t, want, ch.Written.Bytes())
}

func TestDisconnect(t *testing.T) {
	ch := testchannel.New(nil)
	ch.QueueReply(frameBytes(t, byte(respStopDiagnosticSession), nil)...)
	ch.QueueReply(frameBytes(t, byte(respStopCommunication), nil)...)

	c := newTestClient(ch)
	err := c.Disconnect()
	require.NoError(t, err)
	require.Equal(t, ModeDisconnected, c.Mode())
}

func TestUploadRequiresSecurity(t *testing.T) {
	ch := testchannel.New(nil)
	c := newTestClient(ch)
	_, err := c.Upload(0x800000, 40)
	require.Error(t, err)
}

func TestDownloadRequiresProgrammingMode(t *testing.T) {
	ch := testchannel.New(nil)
	c := newTestClient(ch)
	c.security = SecurityState{Granted: true}
	err := c.Download(0x100000, []byte{0x01})
	require.Error(t, err)
}
