package genl

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	msg := Message{Command: 2, GenlVersion: 1}
	msg.PutU32(4, 0xdeadbeef)
	msg.PutBytes(3, []byte("hello frame"))

	raw := Marshal(42, 7, FlagRequest, msg)
	got, err := Unmarshal(raw)
	require.NoError(t, err)

	require.Equal(t, msg.Command, got.Command)
	require.Equal(t, msg.GenlVersion, got.GenlVersion)

	flags, ok := got.GetU32(4)
	require.True(t, ok)
	require.Equal(t, uint32(0xdeadbeef), flags)

	frame, ok := got.Get(3)
	require.True(t, ok)
	require.Equal(t, []byte("hello frame"), frame)
}

func TestUnmarshalShortMessage(t *testing.T) {
	_, err := Unmarshal([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrShortMessage)
}

func TestUnmarshalTruncatedAttribute(t *testing.T) {
	msg := Message{Command: 1}
	msg.PutU32(1, 1)
	raw := Marshal(1, 1, FlagRequest, msg)
	// truncate the buffer mid-attribute
	_, err := Unmarshal(raw[:len(raw)-2])
	require.ErrorIs(t, err, ErrShortMessage)
}

func TestNewConnResolvesFamily(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sock := NewMockSocket(ctrl)
	sock.EXPECT().Send(gomock.Any()).DoAndReturn(func(raw []byte) error {
		got, err := Unmarshal(raw)
		require.NoError(t, err)
		require.EqualValues(t, CtrlCmdGetFamily, got.Command)
		name, ok := got.Get(CtrlAttrFamilyName)
		require.True(t, ok)
		require.Equal(t, "HWSIM\x00", string(name))
		return nil
	})

	reply := Message{Command: CtrlCmdGetFamily}
	reply.PutU32(CtrlAttrFamilyID, 123)
	sock.EXPECT().Recv().Return(Marshal(GenlIDCtrl, 1, 0, reply), nil)

	conn, err := NewConn(sock, "HWSIM")
	require.NoError(t, err)
	require.EqualValues(t, 123, conn.FamilyID())
}

func TestNewConnFamilyNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sock := NewMockSocket(ctrl)
	sock.EXPECT().Send(gomock.Any()).Return(nil)

	reply := Message{Command: CtrlCmdGetFamily}
	sock.EXPECT().Recv().Return(Marshal(GenlIDCtrl, 1, 0, reply), nil)

	_, err := NewConn(sock, "HWSIM")
	require.Error(t, err)
}
