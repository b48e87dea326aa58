package stomp

// requiredHeaders lists the headers each command must carry before a frame
// can be constructed (§4.2). Commands not listed require none.
var requiredHeaders = map[Command][]Header{
	CommandStomp:     {HeaderAcceptVersion, HeaderHost, HeaderLogin, HeaderPasscode},
	CommandConnect:   {HeaderAcceptVersion, HeaderHost, HeaderLogin, HeaderPasscode},
	CommandSubscribe: {HeaderDestination, HeaderID, HeaderAck},
	CommandConnected: {HeaderVersion},
	CommandMessage:   {HeaderSubscription, HeaderMessageID, HeaderDestination},
	CommandReceipt:   {HeaderReceiptID},
}
