package app

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovall/dentavia_backend/config"
	"github.com/ovall/dentavia_backend/internal/service/notify"
	"github.com/ovall/dentavia_backend/internal/service/reminder"
	"github.com/ovall/dentavia_backend/internal/store/memstore"
	"github.com/ovall/dentavia_backend/pkg/email"
	svcsms "github.com/ovall/dentavia_backend/pkg/sms"
)

type recordedSub struct {
	subject string
	queue   string
}

type fakeSubscriber struct {
	subs []recordedSub
}

func (f *fakeSubscriber) QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error) {
	f.subs = append(f.subs, recordedSub{subject: subj, queue: queue})
	return nil, nil
}

// Workers must join a queue group so that with several replicas each reminder
// job and each confirmation event is handled by exactly one of them.
func TestWorkersSubscribeInQueueGroups(t *testing.T) {
	emailClient, err := email.New(email.Config{})
	require.NoError(t, err)
	smsClient, err := svcsms.NewFromConfig(config.SMSConfig{})
	require.NoError(t, err)

	sub := &fakeSubscriber{}
	startDeliveryWorker(sub, emailClient, smsClient)
	startConfirmationWorker(sub, memstore.New(), emailClient)

	require.Len(t, sub.subs, 2)
	assert.Equal(t, recordedSub{subject: reminder.SubjectSend, queue: deliveryQueue}, sub.subs[0])
	assert.Equal(t, recordedSub{subject: notify.SubjectAll, queue: confirmationQueue}, sub.subs[1])
}
