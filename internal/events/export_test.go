package events

var NewPublisher = newPublisher
