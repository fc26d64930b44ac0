package agent

var ToResultMessage = toResultMessage
